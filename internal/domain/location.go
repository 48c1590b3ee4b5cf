package domain

// Branch 分店（最顶层容器）
type Branch struct {
	ID         int64  `json:"id"`
	BranchName string `json:"branchName"`
}

// Building 楼栋，属于一个 Branch
type Building struct {
	ID           int64  `json:"id"`
	BuildingName string `json:"buildingName"`
	BranchID     int64  `json:"branchId"`
	BranchName   string `json:"branchName,omitempty"`
}

// Level 楼层，属于一个 Building
// Parent names are denormalized for display only.
type Level struct {
	ID           int64  `json:"id"`
	LevelName    string `json:"levelName"`
	LevelNumber  int    `json:"levelNumber"`
	BuildingID   int64  `json:"buildingId"`
	BuildingName string `json:"buildingName,omitempty"`
	BranchID     int64  `json:"branchId,omitempty"`
	BranchName   string `json:"branchName,omitempty"`
}
