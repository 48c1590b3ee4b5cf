package form

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"roomadmin/internal/cascade"
	"roomadmin/internal/client"
	"roomadmin/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// roomInput is the parsed form; nil numbers mean the input was blank.
type roomInput struct {
	RoomNumber string   `form:"roomNumber" validate:"required"`
	LevelID    int64    `form:"levelId" validate:"gt=0"`
	RoomTypeID int64    `form:"roomTypeId" validate:"gt=0"`
	RoomSpace  *float64 `form:"roomSpace" validate:"required,gt=0"`
	RentalFee  *float64 `form:"rentalFee" validate:"required,gte=0"`
	MeterType  string   `form:"meterType" validate:"omitempty,oneof=ELECTRICITY WATER"`

	fee decimal.Decimal
}

var roomMessages = map[string]string{
	"roomNumber.required": "Room number is required",
	"levelId.gt":          "Level is required",
	"roomTypeId.gt":       "Room type is required",
	"roomSpace.required":  "Room space is required",
	"roomSpace.gt":        "Room space must be greater than 0",
	"rentalFee.required":  "Rental fee is required",
	"rentalFee.gte":       "Rental fee cannot be negative",
	"meterType.oneof":     "Meter type must be ELECTRICITY or WATER",
}

// RoomForm 房间新建/编辑表单
// Inputs are kept as the raw strings the user typed; they are parsed only by
// Validate and BuildPayload.
type RoomForm struct {
	mode   Mode
	roomID int64
	logger *zap.Logger

	Location *cascade.Selection

	roomNumber string
	roomTypeID string
	roomSpace  string
	rentalFee  string
	meterType  string

	utilities []int64
	staged    []StagedImage
	previews  *PreviewRegistry
	removals  *ImageRemovals

	seed   *domain.Room
	ref    *Reference
	errors FieldErrors
	closed bool
}

// NewRoomForm 创建新建模式表单
func NewRoomForm(loc *cascade.Selection, previews *PreviewRegistry, logger *zap.Logger) *RoomForm {
	if logger == nil {
		logger = zap.NewNop()
	}
	if previews == nil {
		previews = NewPreviewRegistry()
	}
	return &RoomForm{
		mode:      ModeCreate,
		logger:    logger,
		Location:  loc,
		meterType: string(domain.DefaultMeterType),
		utilities: []int64{},
		previews:  previews,
		removals:  NewImageRemovals(nil),
		errors:    FieldErrors{},
	}
}

// NewEditRoomForm 创建编辑模式表单，字段取自 room
func NewEditRoomForm(room domain.Room, loc *cascade.Selection, previews *PreviewRegistry, logger *zap.Logger) *RoomForm {
	f := NewRoomForm(loc, previews, logger)
	f.mode = ModeEdit
	f.roomID = room.ID
	f.roomNumber = room.RoomNumber
	f.roomTypeID = strconv.FormatInt(room.RoomTypeID, 10)
	f.roomSpace = strconv.FormatFloat(room.RoomSpace, 'f', -1, 64)
	f.rentalFee = room.RentalFee.String()
	if room.MeterType != "" {
		f.meterType = string(room.MeterType)
	}
	f.removals = NewImageRemovals(room.ImageURLs)
	f.seed = &room
	return f
}

func (f *RoomForm) Mode() Mode            { return f.mode }
func (f *RoomForm) RoomID() int64         { return f.roomID }
func (f *RoomForm) Ready() bool           { return f.ref != nil }
func (f *RoomForm) Reference() *Reference { return f.ref }

// Mount loads reference data and, in edit mode, pre-selects the room's location.
// Nothing is rendered from a partial load.
func (f *RoomForm) Mount(ctx context.Context, src ReferenceSources) error {
	ref, err := LoadReference(ctx, src, f.logger)
	if err != nil {
		return err
	}
	opts := make([]cascade.Option, 0, len(ref.Branches))
	for _, b := range ref.Branches {
		opts = append(opts, cascade.Option{ID: b.ID, Label: b.BranchName})
	}
	f.Location.Seed(cascade.Branch, opts)
	if f.seed != nil {
		if err := cascade.SelectPath(ctx, f.Location, f.seed.BranchID, f.seed.BuildingID, f.seed.LevelID); err != nil {
			f.logger.Error("Failed to preselect room location", zap.Int64("room_id", f.roomID), zap.Error(err))
			return err
		}
	}
	f.ref = ref
	return nil
}

// ---- field edits; each clears only its own error ----

func (f *RoomForm) SetRoomNumber(v string) {
	f.roomNumber = v
	delete(f.errors, "roomNumber")
}

func (f *RoomForm) SetRoomType(v string) {
	f.roomTypeID = v
	delete(f.errors, "roomTypeId")
}

func (f *RoomForm) SetRoomSpace(v string) {
	f.roomSpace = v
	delete(f.errors, "roomSpace")
}

func (f *RoomForm) SetRentalFee(v string) {
	f.rentalFee = v
	delete(f.errors, "rentalFee")
}

// SetMeterType is only meaningful in edit mode; create leaves the default.
func (f *RoomForm) SetMeterType(v string) {
	f.meterType = strings.ToUpper(strings.TrimSpace(v))
	delete(f.errors, "meterType")
}

func (f *RoomForm) SelectBranch(ctx context.Context, id int64) error {
	return f.Location.Select(ctx, cascade.Branch, id)
}

func (f *RoomForm) SelectBuilding(ctx context.Context, id int64) error {
	return f.Location.Select(ctx, cascade.Building, id)
}

func (f *RoomForm) SelectLevel(ctx context.Context, id int64) error {
	delete(f.errors, "levelId")
	return f.Location.Select(ctx, cascade.Level, id)
}

// ToggleUtility adds or removes a utility type from the selection, keeping
// selection order.
func (f *RoomForm) ToggleUtility(utilityTypeID int64) error {
	if f.mode != ModeCreate {
		return ErrUtilitiesCreateOnly
	}
	for i, id := range f.utilities {
		if id == utilityTypeID {
			f.utilities = append(f.utilities[:i], f.utilities[i+1:]...)
			return nil
		}
	}
	f.utilities = append(f.utilities, utilityTypeID)
	return nil
}

func (f *RoomForm) SelectedUtilities() []int64 {
	return append([]int64(nil), f.utilities...)
}

// ---- images ----

// StageImage queues a file and allocates its preview handle.
func (f *RoomForm) StageImage(fileName, contentType string, data []byte) string {
	h := f.previews.Allocate()
	f.staged = append(f.staged, StagedImage{Handle: h, FileName: fileName, ContentType: contentType, Data: data})
	return h
}

// UnstageImage drops a queued file and releases its preview.
func (f *RoomForm) UnstageImage(handle string) bool {
	for i, img := range f.staged {
		if img.Handle == handle {
			f.staged = append(f.staged[:i], f.staged[i+1:]...)
			f.previews.Release(handle)
			return true
		}
	}
	return false
}

func (f *RoomForm) StagedImages() []StagedImage {
	return append([]StagedImage(nil), f.staged...)
}

func (f *RoomForm) MarkImageForRemoval(url string) (bool, error) {
	if f.mode != ModeEdit {
		return false, ErrImageRemovalEditOnly
	}
	return f.removals.Mark(url), nil
}

func (f *RoomForm) RestoreImage(url string) bool { return f.removals.Restore(url) }
func (f *RoomForm) CurrentImages() []string      { return f.removals.Current() }
func (f *RoomForm) PendingRemovals() []string    { return f.removals.Pending() }

// Close releases every outstanding preview. Called on cancel, on successful
// submit and when the form is discarded; safe to call twice.
func (f *RoomForm) Close() {
	if f.closed {
		return
	}
	f.closed = true
	for _, img := range f.staged {
		f.previews.Release(img.Handle)
	}
	f.staged = nil
}

// ---- validation and payload ----

func (f *RoomForm) Errors() FieldErrors {
	out := make(FieldErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

func (f *RoomForm) parse() (roomInput, FieldErrors) {
	errs := FieldErrors{}
	in := roomInput{RoomNumber: strings.TrimSpace(f.roomNumber)}
	if id, ok := f.Location.Selected(cascade.Level); ok {
		in.LevelID = id
	}
	if raw := strings.TrimSpace(f.roomTypeID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs["roomTypeId"] = "Room type is required"
		}
		in.RoomTypeID = id
	}
	if raw := strings.TrimSpace(f.roomSpace); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs["roomSpace"] = "Room space must be a number"
		} else {
			in.RoomSpace = &v
		}
	}
	if raw := strings.TrimSpace(f.rentalFee); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			errs["rentalFee"] = "Rental fee must be a number"
		} else {
			fv := v.InexactFloat64()
			in.RentalFee, in.fee = &fv, v
		}
	}
	if f.mode == ModeEdit {
		in.MeterType = f.meterType
	}
	return in, errs
}

// Validate runs every local check and replaces the error set. It never touches
// the network.
func (f *RoomForm) Validate() error {
	in, errs := f.parse()
	collect(validate.Struct(in), errs, roomMessages)
	f.errors = errs
	if len(errs) > 0 {
		return &ValidationError{Fields: f.Errors()}
	}
	return nil
}

// BuildPayload validates and assembles the multipart submission: the scalar
// fields, one utilityTypeIds entry per selected utility (create), one images
// entry per staged file, and in edit mode meterType plus imagesToRemove when
// any removal is pending.
func (f *RoomForm) BuildPayload() (*client.Payload, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	in, _ := f.parse()

	p := client.NewPayload().
		AddField(client.FieldRoomNumber, in.RoomNumber).
		AddField(client.FieldLevelID, strconv.FormatInt(in.LevelID, 10)).
		AddField(client.FieldRoomTypeID, strconv.FormatInt(in.RoomTypeID, 10)).
		AddField(client.FieldRoomSpace, strconv.FormatFloat(*in.RoomSpace, 'f', -1, 64)).
		AddField(client.FieldRentalFee, in.fee.String())

	if f.mode == ModeEdit {
		p.AddField(client.FieldMeterType, in.MeterType)
	} else {
		for _, id := range f.utilities {
			p.AddField(client.FieldUtilityTypeIDs, strconv.FormatInt(id, 10))
		}
	}
	for _, img := range f.staged {
		p.AddFile(client.FieldImages, img.FileName, img.ContentType, img.Data)
	}
	if pending := f.removals.Pending(); f.mode == ModeEdit && len(pending) > 0 {
		raw, err := json.Marshal(pending)
		if err != nil {
			return nil, fmt.Errorf("encode imagesToRemove: %w", err)
		}
		p.AddField(client.FieldImagesToRemove, string(raw))
	}
	return p, nil
}
