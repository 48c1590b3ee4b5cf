package client

import (
	"context"
	"net/http"
	"strconv"

	"roomadmin/internal/domain"
)

const (
	branchesPath       = "/api/branches"
	branchBuildingPath = "/api/buildings/branch/{branchId}"
	buildingLevelPath  = "/api/levels/building/{buildingId}"
	utilityTypesPath   = "/api/utility-types"
)

// LocationsClient 分店/楼栋/楼层（只读参考数据）
type LocationsClient struct {
	c *Client
}

func (l *LocationsClient) Branches(ctx context.Context) ([]domain.Branch, error) {
	resp, err := l.c.execute(l.c.request(ctx), http.MethodGet, branchesPath)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.Branch](resp.Body()), nil
}

func (l *LocationsClient) Buildings(ctx context.Context, branchID int64) ([]domain.Building, error) {
	req := l.c.request(ctx).SetPathParam("branchId", strconv.FormatInt(branchID, 10))
	resp, err := l.c.execute(req, http.MethodGet, branchBuildingPath)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.Building](resp.Body()), nil
}

func (l *LocationsClient) Levels(ctx context.Context, buildingID int64) ([]domain.Level, error) {
	req := l.c.request(ctx).SetPathParam("buildingId", strconv.FormatInt(buildingID, 10))
	resp, err := l.c.execute(req, http.MethodGet, buildingLevelPath)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.Level](resp.Body()), nil
}

// UtilityTypesClient 公用事业类型（只读参考数据）
type UtilityTypesClient struct {
	c *Client
}

func (u *UtilityTypesClient) List(ctx context.Context) ([]domain.UtilityType, error) {
	resp, err := u.c.execute(u.c.request(ctx), http.MethodGet, utilityTypesPath)
	if err != nil {
		return nil, err
	}
	return DecodeList[domain.UtilityType](resp.Body()), nil
}
