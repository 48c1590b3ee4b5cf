package client

import (
	"context"
	"net/http"

	"roomadmin/internal/domain"
)

const (
	roomTypesPath = "/api/room-types"
	roomTypePath  = "/api/room-types/{id}"
)

// RoomTypeInput is the JSON body of room type create/update.
type RoomTypeInput struct {
	TypeName    string `json:"typeName"`
	Description string `json:"description"`
}

// RoomTypesClient 房型资源
type RoomTypesClient struct {
	c *Client
}

func (r *RoomTypesClient) List(ctx context.Context) ([]domain.RoomType, error) {
	resp, err := r.c.execute(r.c.request(ctx), http.MethodGet, roomTypesPath)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.RoomType](resp.Body()), nil
}

func (r *RoomTypesClient) Get(ctx context.Context, id int64) (*domain.RoomType, error) {
	resp, err := r.c.execute(r.c.request(ctx).SetPathParams(idParam(id)), http.MethodGet, roomTypePath)
	if err != nil {
		return nil, err
	}
	var rt domain.RoomType
	ok, err := decodeOne(resp.Body(), &rt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &rt, nil
}

func (r *RoomTypesClient) Create(ctx context.Context, in RoomTypeInput) (*domain.RoomType, error) {
	req := r.c.request(ctx).SetHeader("Content-Type", "application/json").SetBody(in)
	resp, err := r.c.execute(req, http.MethodPost, roomTypesPath)
	if err != nil {
		return nil, err
	}
	return decodeRoomType(resp.Body())
}

func (r *RoomTypesClient) Update(ctx context.Context, id int64, in RoomTypeInput) (*domain.RoomType, error) {
	req := r.c.request(ctx).
		SetPathParams(idParam(id)).
		SetHeader("Content-Type", "application/json").
		SetBody(in)
	resp, err := r.c.execute(req, http.MethodPut, roomTypePath)
	if err != nil {
		return nil, err
	}
	return decodeRoomType(resp.Body())
}

// Delete does not check for rooms still referencing the type; the backend decides.
func (r *RoomTypesClient) Delete(ctx context.Context, id int64) error {
	_, err := r.c.execute(r.c.request(ctx).SetPathParams(idParam(id)), http.MethodDelete, roomTypePath)
	return err
}

func decodeRoomType(body []byte) (*domain.RoomType, error) {
	var rt domain.RoomType
	ok, err := decodeOne(body, &rt)
	if err != nil || !ok {
		return nil, err
	}
	return &rt, nil
}
