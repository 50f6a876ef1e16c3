package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/config"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/report"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// queueMessage 与 domain.MailMessage 对应，data 延迟到确定类型之后再解析
type queueMessage struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

type inventoryReportView struct {
	RequestedBy string
	GeneratedAt string
	FileName    string
	Stats       domain.AssetStats
}

// buildMessage 根据队列中的消息构建邮件，返回的错误都不值得重试
func buildMessage(cfg *config.Config, body []byte) (*mail.Msg, error) {
	var qm queueMessage
	if err := json.Unmarshal(body, &qm); err != nil {
		return nil, fmt.Errorf("邮件信息反序列化失败: %w", err)
	}

	m := mail.NewMsg()
	if err := m.From(cfg.Email.SMTP.Username); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(qm.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	// 根据邮件类型解析数据
	switch qm.Type {
	case domain.MailTypeInventoryReport:
		var data domain.InventoryReportMailData
		if err := json.Unmarshal(qm.Data, &data); err != nil {
			return nil, fmt.Errorf("报表数据反序列化失败: %w", err)
		}

		stats := domain.AssetStats{}
		for _, asset := range data.Assets {
			stats.Add(asset.Status, 1)
		}

		view := inventoryReportView{
			RequestedBy: data.RequestedBy,
			GeneratedAt: data.GeneratedAt.Local().Format("2006-01-02 15:04"),
			FileName:    cfg.Report.FileName,
			Stats:       stats,
		}
		if err := m.SetBodyHTMLTemplate(templates.Lookup("inventory_report_email.html"), view); err != nil {
			return nil, fmt.Errorf("无法设置邮件正文: %w", err)
		}

		var buf bytes.Buffer
		if err := report.Write(&buf, data.Assets, cfg.Report.SheetName); err != nil {
			return nil, fmt.Errorf("无法生成报表: %w", err)
		}
		if err := m.AttachReader(cfg.Report.FileName, &buf, mail.WithFileContentType(mail.ContentType(report.ContentType))); err != nil {
			return nil, fmt.Errorf("无法添加附件: %w", err)
		}

		m.Subject("IT 资产管理 - 资产清单")
	default:
		return nil, fmt.Errorf("不支持的邮件类型 %q", qm.Type)
	}

	return m, nil
}
