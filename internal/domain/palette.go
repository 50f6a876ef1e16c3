package domain

// 与移动端保持一致的状态配色
var statusColors = map[AssetStatus]string{
	StatusAvailable:   "#34C759",
	StatusAssigned:    "#FF9500",
	StatusMaintenance: "#FF3B30",
	StatusRetired:     "#8E8E93",
}

var typeIcons = map[AssetType]string{
	AssetTypeLaptop:   "laptop-outline",
	AssetTypePhone:    "phone-portrait-outline",
	AssetTypeTablet:   "tablet-landscape-outline",
	AssetTypeServer:   "server",
	AssetTypeMouse:    "mouse",
	AssetTypeKeyboard: "keyboard",
	AssetTypeMonitor:  "monitor",
	AssetTypePrinter:  "printer",
}

// Color 返回状态对应的颜色，未知状态按 Retired 的灰色处理
func (s AssetStatus) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return statusColors[StatusRetired]
}

func (t AssetType) Icon() string {
	if icon, ok := typeIcons[t]; ok {
		return icon
	}
	return "help-outline"
}
