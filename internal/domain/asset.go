package domain

import "time"

type AssetType string

const (
	AssetTypeLaptop   AssetType = "Laptop"
	AssetTypePhone    AssetType = "Phone"
	AssetTypeTablet   AssetType = "Tablet"
	AssetTypeServer   AssetType = "Server"
	AssetTypeMouse    AssetType = "Mouse"
	AssetTypeKeyboard AssetType = "Keyboard"
	AssetTypeMonitor  AssetType = "Monitor"
	AssetTypePrinter  AssetType = "Printer"
)

var AssetTypes = []AssetType{
	AssetTypeLaptop,
	AssetTypePhone,
	AssetTypeTablet,
	AssetTypeServer,
	AssetTypeMouse,
	AssetTypeKeyboard,
	AssetTypeMonitor,
	AssetTypePrinter,
}

type AssetStatus string

const (
	StatusAvailable   AssetStatus = "Available"
	StatusAssigned    AssetStatus = "Assigned"
	StatusMaintenance AssetStatus = "Maintenance"
	StatusRetired     AssetStatus = "Retired"
)

var AssetStatuses = []AssetStatus{
	StatusAvailable,
	StatusAssigned,
	StatusMaintenance,
	StatusRetired,
}

// Asset 在传输时使用 _id 作为标识字段，与文档存储保持一致
type Asset struct {
	ID           string      `json:"_id"`
	Name         string      `json:"name"`
	Type         AssetType   `json:"type"`
	Status       AssetStatus `json:"status"`
	AssignedTo   string      `json:"assignedTo,omitempty"`
	EmployeeID   string      `json:"employeeId"`
	SerialNumber string      `json:"serialNumber"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// AssetPatch 中为 nil 的字段不会被更新
type AssetPatch struct {
	Name         *string
	Type         *AssetType
	Status       *AssetStatus
	AssignedTo   *string
	EmployeeID   *string
	SerialNumber *string
}

func (p AssetPatch) IsEmpty() bool {
	return p.Name == nil && p.Type == nil && p.Status == nil && p.AssignedTo == nil && p.EmployeeID == nil && p.SerialNumber == nil
}

// Apply 将 patch 写入 a，不修改 ID 与时间戳
func (p AssetPatch) Apply(a *Asset) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.AssignedTo != nil {
		a.AssignedTo = *p.AssignedTo
	}
	if p.EmployeeID != nil {
		a.EmployeeID = *p.EmployeeID
	}
	if p.SerialNumber != nil {
		a.SerialNumber = *p.SerialNumber
	}
}

// Fields 返回以文档字段名为键的待更新字段
func (p AssetPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Type != nil {
		fields["type"] = string(*p.Type)
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.AssignedTo != nil {
		fields["assignedTo"] = *p.AssignedTo
	}
	if p.EmployeeID != nil {
		fields["employeeId"] = *p.EmployeeID
	}
	if p.SerialNumber != nil {
		fields["serialNumber"] = *p.SerialNumber
	}
	return fields
}

type AssetStats struct {
	Total       int64 `json:"total"`
	Available   int64 `json:"available"`
	Assigned    int64 `json:"assigned"`
	Maintenance int64 `json:"maintenance"`
}

// Add 按状态累加 n 条记录，Retired 及未知状态只计入总数
func (s *AssetStats) Add(status AssetStatus, n int64) {
	s.Total += n
	switch status {
	case StatusAvailable:
		s.Available += n
	case StatusAssigned:
		s.Assigned += n
	case StatusMaintenance:
		s.Maintenance += n
	}
}
