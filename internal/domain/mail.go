package domain

import "time"

const MailTypeInventoryReport = "inventory_report"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type InventoryReportMailData struct {
	RequestedBy string    `json:"requestedBy"`
	GeneratedAt time.Time `json:"generatedAt"`
	Assets      []*Asset  `json:"assets"`
}
