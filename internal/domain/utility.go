package domain

import "github.com/shopspring/decimal"

// UtilityType 公用事业类型定义（电、水、网络等）
type UtilityType struct {
	ID                int64           `json:"id"`
	UtilityName       string          `json:"utilityName"`
	Description       string          `json:"description,omitempty"`
	RatePerUnit       decimal.Decimal `json:"ratePerUnit"`
	CalculationMethod string          `json:"calculationMethod,omitempty"`
}

// RoomUtility is one room's association with a utility type. The active flag
// belongs to the association, never to the UtilityType definition.
type RoomUtility struct {
	UtilityTypeID     int64           `json:"utilityTypeId"`
	UtilityName       string          `json:"utilityName"`
	Description       string          `json:"description,omitempty"`
	RatePerUnit       decimal.Decimal `json:"ratePerUnit"`
	CalculationMethod string          `json:"calculationMethod,omitempty"`
	IsActive          bool            `json:"isActive"`
}
