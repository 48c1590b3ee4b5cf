package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"roomadmin/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Envelope selects the response shape of GET /api/rooms/available.
type Envelope string

const (
	EnvelopePaginated Envelope = "paginated" // {"content": [...], "totalElements": n}
	EnvelopeWrapper   Envelope = "wrapper"   // {"data": [...], "success": true}
	EnvelopeBare      Envelope = "bare"      // [...]
	EnvelopeNested    Envelope = "nested"    // {"result": {"page": {"items": [...]}}}
)

type Options struct {
	Envelope Envelope
	// AuthToken, when set, is required as "Bearer <token>" on every /api call.
	AuthToken string
}

const maxUploadBytes = 32 << 20

// Handler 模拟物业后端的 REST 接口
type Handler struct {
	repo   *MemoryRepo
	opts   Options
	logger *zap.Logger
}

func NewRouter(repo *MemoryRepo, opts Options, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Envelope == "" {
		opts.Envelope = EnvelopePaginated
	}
	h := &Handler{repo: repo, opts: opts, logger: logger}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.requireToken)

	api.HandleFunc("/rooms", h.listRooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms", h.createRoom).Methods(http.MethodPost)
	api.HandleFunc("/rooms/available", h.availableRooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms/search", h.searchRooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id:[0-9]+}", h.getRoom).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id:[0-9]+}", h.updateRoom).Methods(http.MethodPut)
	api.HandleFunc("/rooms/{id:[0-9]+}", h.deleteRoom).Methods(http.MethodDelete)
	api.HandleFunc("/rooms/{id:[0-9]+}/images", h.addImages).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id:[0-9]+}/images", h.removeImage).Methods(http.MethodDelete)
	api.HandleFunc("/rooms/{id:[0-9]+}/utilities", h.addUtilities).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id:[0-9]+}/utilities", h.replaceUtilities).Methods(http.MethodPut)
	api.HandleFunc("/rooms/{id:[0-9]+}/utilities/{utilityTypeId:[0-9]+}", h.removeUtility).Methods(http.MethodDelete)
	api.HandleFunc("/rooms/{id:[0-9]+}/utilities/{utilityTypeId:[0-9]+}/status", h.toggleUtility).Methods(http.MethodPatch)

	api.HandleFunc("/room-types", h.listRoomTypes).Methods(http.MethodGet)
	api.HandleFunc("/room-types", h.createRoomType).Methods(http.MethodPost)
	api.HandleFunc("/room-types/{id:[0-9]+}", h.getRoomType).Methods(http.MethodGet)
	api.HandleFunc("/room-types/{id:[0-9]+}", h.updateRoomType).Methods(http.MethodPut)
	api.HandleFunc("/room-types/{id:[0-9]+}", h.deleteRoomType).Methods(http.MethodDelete)

	api.HandleFunc("/branches", h.listBranches).Methods(http.MethodGet)
	api.HandleFunc("/buildings/branch/{branchId:[0-9]+}", h.listBuildings).Methods(http.MethodGet)
	api.HandleFunc("/levels/building/{buildingId:[0-9]+}", h.listLevels).Methods(http.MethodGet)
	api.HandleFunc("/utility-types", h.listUtilityTypes).Methods(http.MethodGet)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, ErrBadInput):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("mock api failure", zap.Error(err))
	}
	writeJSON(w, status, errorBody{Status: status, Message: err.Error()})
}

func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.opts.AuthToken != "" && r.Header.Get("Authorization") != "Bearer "+h.opts.AuthToken {
			writeJSON(w, http.StatusUnauthorized, errorBody{
				Status:  http.StatusUnauthorized,
				Message: "Full authentication is required to access this resource",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

// ---- rooms ----

func (h *Handler) listRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.ListRooms())
}

func (h *Handler) availableRooms(w http.ResponseWriter, _ *http.Request) {
	rooms := h.repo.AvailableRooms()
	switch h.opts.Envelope {
	case EnvelopeWrapper:
		writeJSON(w, http.StatusOK, map[string]any{"data": rooms, "success": true})
	case EnvelopeBare:
		writeJSON(w, http.StatusOK, rooms)
	case EnvelopeNested:
		writeJSON(w, http.StatusOK, map[string]any{
			"result": map[string]any{
				"meta": map[string]any{"count": len(rooms)},
				"page": map[string]any{"items": rooms},
			},
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"content":       rooms,
			"totalElements": len(rooms),
			"number":        0,
			"size":          len(rooms),
		})
	}
}

func (h *Handler) searchRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.SearchRooms(domain.ParseRoomFilter(r.URL.Query())))
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.repo.GetRoom(pathID(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	in, err := parseRoomForm(r, true)
	if err != nil {
		h.writeError(w, err)
		return
	}
	room, err := h.repo.CreateRoom(in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (h *Handler) updateRoom(w http.ResponseWriter, r *http.Request) {
	in, err := parseRoomForm(r, true)
	if err != nil {
		h.writeError(w, err)
		return
	}
	room, err := h.repo.UpdateRoom(pathID(r, "id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteRoom(pathID(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addImages(w http.ResponseWriter, r *http.Request) {
	in, err := parseRoomForm(r, false)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(in.ImageURLs) == 0 {
		h.writeError(w, fmt.Errorf("%w: no images attached", ErrBadInput))
		return
	}
	room, err := h.repo.AddImages(pathID(r, "id"), in.ImageURLs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) removeImage(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("imageUrl")
	if url == "" {
		h.writeError(w, fmt.Errorf("%w: imageUrl is required", ErrBadInput))
		return
	}
	if err := h.repo.RemoveImage(pathID(r, "id"), url); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type utilityIDsBody struct {
	UtilityTypeIDs []int64 `json:"utilityTypeIds"`
}

func decodeUtilityIDs(r *http.Request) ([]int64, error) {
	var body utilityIDsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	return body.UtilityTypeIDs, nil
}

func (h *Handler) addUtilities(w http.ResponseWriter, r *http.Request) {
	ids, err := decodeUtilityIDs(r)
	if err == nil {
		err = h.repo.AddUtilities(pathID(r, "id"), ids)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) replaceUtilities(w http.ResponseWriter, r *http.Request) {
	ids, err := decodeUtilityIDs(r)
	if err == nil {
		err = h.repo.ReplaceUtilities(pathID(r, "id"), ids)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeUtility(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.RemoveUtility(pathID(r, "id"), pathID(r, "utilityTypeId")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleUtility(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsActive *bool `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsActive == nil {
		h.writeError(w, fmt.Errorf("%w: isActive is required", ErrBadInput))
		return
	}
	active, err := h.repo.ToggleUtility(pathID(r, "id"), pathID(r, "utilityTypeId"), *body.IsActive)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isActive": active})
}

// parseRoomForm reads the multipart contract of room create/update/images.
// Uploaded files are not kept; each becomes a generated /uploads URL.
func parseRoomForm(r *http.Request, scalars bool) (RoomInput, error) {
	var in RoomInput
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return in, fmt.Errorf("%w: multipart form expected: %v", ErrBadInput, err)
	}
	form := r.MultipartForm

	if scalars {
		var err error
		in.RoomNumber = r.FormValue("roomNumber")
		if in.LevelID, err = strconv.ParseInt(r.FormValue("levelId"), 10, 64); err != nil {
			return in, fmt.Errorf("%w: levelId", ErrBadInput)
		}
		if in.RoomTypeID, err = strconv.ParseInt(r.FormValue("roomTypeId"), 10, 64); err != nil {
			return in, fmt.Errorf("%w: roomTypeId", ErrBadInput)
		}
		if in.RoomSpace, err = strconv.ParseFloat(r.FormValue("roomSpace"), 64); err != nil {
			return in, fmt.Errorf("%w: roomSpace", ErrBadInput)
		}
		if in.RentalFee, err = decimal.NewFromString(r.FormValue("rentalFee")); err != nil {
			return in, fmt.Errorf("%w: rentalFee", ErrBadInput)
		}
		if mt := r.FormValue("meterType"); mt != "" {
			if in.MeterType, err = domain.ParseMeterType(mt); err != nil {
				return in, fmt.Errorf("%w: %v", ErrBadInput, err)
			}
		}
		for _, raw := range form.Value["utilityTypeIds"] {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return in, fmt.Errorf("%w: utilityTypeIds", ErrBadInput)
			}
			in.UtilityTypeIDs = append(in.UtilityTypeIDs, id)
		}
		if raw := r.FormValue("imagesToRemove"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &in.ImagesToRemove); err != nil {
				return in, fmt.Errorf("%w: imagesToRemove must be a JSON array", ErrBadInput)
			}
		}
	}

	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			return in, fmt.Errorf("%w: %v", ErrBadInput, err)
		}
		_, _ = io.Copy(io.Discard, f)
		_ = f.Close()
		name := strings.ReplaceAll(path.Base(fh.Filename), " ", "_")
		in.ImageURLs = append(in.ImageURLs, "/uploads/rooms/"+uuid.NewString()+"/"+name)
	}
	return in, nil
}

// ---- room types ----

type roomTypeBody struct {
	TypeName    string `json:"typeName"`
	Description string `json:"description"`
}

func decodeRoomType(r *http.Request) (roomTypeBody, error) {
	var body roomTypeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	return body, nil
}

func (h *Handler) listRoomTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.ListRoomTypes())
}

func (h *Handler) getRoomType(w http.ResponseWriter, r *http.Request) {
	t, err := h.repo.GetRoomType(pathID(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) createRoomType(w http.ResponseWriter, r *http.Request) {
	body, err := decodeRoomType(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	t, err := h.repo.CreateRoomType(body.TypeName, body.Description)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) updateRoomType(w http.ResponseWriter, r *http.Request) {
	body, err := decodeRoomType(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	t, err := h.repo.UpdateRoomType(pathID(r, "id"), body.TypeName, body.Description)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) deleteRoomType(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteRoomType(pathID(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- reference data ----

func (h *Handler) listBranches(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.repo.Branches()})
}

func (h *Handler) listBuildings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.BuildingsByBranch(pathID(r, "branchId")))
}

func (h *Handler) listLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.LevelsByBuilding(pathID(r, "buildingId")))
}

func (h *Handler) listUtilityTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.repo.UtilityTypes())
}
