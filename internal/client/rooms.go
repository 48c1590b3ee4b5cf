package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"roomadmin/internal/domain"
)

// Multipart field names of room create/update/images requests.
const (
	FieldRoomNumber     = "roomNumber"
	FieldLevelID        = "levelId"
	FieldRoomTypeID     = "roomTypeId"
	FieldRoomSpace      = "roomSpace"
	FieldRentalFee      = "rentalFee"
	FieldMeterType      = "meterType"
	FieldUtilityTypeIDs = "utilityTypeIds"
	FieldImages         = "images"
	FieldImagesToRemove = "imagesToRemove"
)

const (
	roomsPath            = "/api/rooms"
	roomPath             = "/api/rooms/{id}"
	roomsAvailablePath   = "/api/rooms/available"
	roomsSearchPath      = "/api/rooms/search"
	roomImagesPath       = "/api/rooms/{id}/images"
	roomUtilitiesPath    = "/api/rooms/{id}/utilities"
	roomUtilityPath      = "/api/rooms/{id}/utilities/{utilityTypeId}"
	roomUtilityStatePath = "/api/rooms/{id}/utilities/{utilityTypeId}/status"
)

// RoomsClient 房间资源
type RoomsClient struct {
	c *Client
}

type utilityIDsBody struct {
	UtilityTypeIDs []int64 `json:"utilityTypeIds"`
}

type utilityStatusBody struct {
	IsActive bool `json:"isActive"`
}

func idParam(id int64) map[string]string {
	return map[string]string{"id": strconv.FormatInt(id, 10)}
}

func (r *RoomsClient) list(ctx context.Context, path string, query url.Values) ([]domain.Room, error) {
	rq := r.c.request(ctx)
	if len(query) > 0 {
		rq.SetQueryParamsFromValues(query)
	}
	resp, err := r.c.execute(rq, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.Room](resp.Body()), nil
}

func (r *RoomsClient) List(ctx context.Context) ([]domain.Room, error) {
	return r.list(ctx, roomsPath, nil)
}

// ListAvailable tolerates paginated, wrapper, bare and nested envelopes.
func (r *RoomsClient) ListAvailable(ctx context.Context) ([]domain.Room, error) {
	return r.list(ctx, roomsAvailablePath, nil)
}

func (r *RoomsClient) Search(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	return r.list(ctx, roomsSearchPath, filter.Values())
}

func (r *RoomsClient) Get(ctx context.Context, id int64) (*domain.Room, error) {
	resp, err := r.c.execute(r.c.request(ctx).SetPathParams(idParam(id)), http.MethodGet, roomPath)
	if err != nil {
		return nil, err
	}
	var room domain.Room
	ok, err := decodeOne(resp.Body(), &room)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &room, nil
}

// Create posts the multipart payload. The returned room is nil when the server
// answers without a body.
func (r *RoomsClient) Create(ctx context.Context, p *Payload) (*domain.Room, error) {
	resp, err := r.c.sendPayload(ctx, http.MethodPost, roomsPath, nil, p)
	if err != nil {
		return nil, err
	}
	return decodeRoom(resp.Body())
}

func (r *RoomsClient) Update(ctx context.Context, id int64, p *Payload) (*domain.Room, error) {
	resp, err := r.c.sendPayload(ctx, http.MethodPut, roomPath, idParam(id), p)
	if err != nil {
		return nil, err
	}
	return decodeRoom(resp.Body())
}

func (r *RoomsClient) Delete(ctx context.Context, id int64) error {
	_, err := r.c.execute(r.c.request(ctx).SetPathParams(idParam(id)), http.MethodDelete, roomPath)
	return err
}

// AddImages appends the payload's images to the room.
func (r *RoomsClient) AddImages(ctx context.Context, id int64, p *Payload) (*domain.Room, error) {
	resp, err := r.c.sendPayload(ctx, http.MethodPost, roomImagesPath, idParam(id), p)
	if err != nil {
		return nil, err
	}
	return decodeRoom(resp.Body())
}

// RemoveImage deletes one image by its exact stored URL. The URL travels in the
// query string and is percent-encoded by the query encoder.
func (r *RoomsClient) RemoveImage(ctx context.Context, id int64, imageURL string) error {
	req := r.c.request(ctx).
		SetPathParams(idParam(id)).
		SetQueryParam("imageUrl", imageURL)
	_, err := r.c.execute(req, http.MethodDelete, roomImagesPath)
	return err
}

func (r *RoomsClient) AddUtilities(ctx context.Context, id int64, utilityTypeIDs []int64) error {
	return r.sendUtilityIDs(ctx, http.MethodPost, id, utilityTypeIDs)
}

// ReplaceUtilities replaces the room's whole association set.
func (r *RoomsClient) ReplaceUtilities(ctx context.Context, id int64, utilityTypeIDs []int64) error {
	return r.sendUtilityIDs(ctx, http.MethodPut, id, utilityTypeIDs)
}

func (r *RoomsClient) sendUtilityIDs(ctx context.Context, method string, id int64, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	req := r.c.request(ctx).
		SetPathParams(idParam(id)).
		SetHeader("Content-Type", "application/json").
		SetBody(utilityIDsBody{UtilityTypeIDs: ids})
	_, err := r.c.execute(req, method, roomUtilitiesPath)
	return err
}

func (r *RoomsClient) RemoveUtility(ctx context.Context, id, utilityTypeID int64) error {
	req := r.c.request(ctx).SetPathParams(map[string]string{
		"id":            strconv.FormatInt(id, 10),
		"utilityTypeId": strconv.FormatInt(utilityTypeID, 10),
	})
	_, err := r.c.execute(req, http.MethodDelete, roomUtilityPath)
	return err
}

// ToggleUtilityStatus sends the utility's current flag; the server flips it.
// Set membership is not changed.
func (r *RoomsClient) ToggleUtilityStatus(ctx context.Context, id, utilityTypeID int64, isActive bool) error {
	req := r.c.request(ctx).
		SetPathParams(map[string]string{
			"id":            strconv.FormatInt(id, 10),
			"utilityTypeId": strconv.FormatInt(utilityTypeID, 10),
		}).
		SetHeader("Content-Type", "application/json").
		SetBody(utilityStatusBody{IsActive: isActive})
	_, err := r.c.execute(req, http.MethodPatch, roomUtilityStatePath)
	return err
}

func decodeRoom(body []byte) (*domain.Room, error) {
	var room domain.Room
	ok, err := decodeOne(body, &room)
	if err != nil || !ok {
		return nil, err
	}
	return &room, nil
}
