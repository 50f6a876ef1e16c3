package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/report"
)

func (h *Handler) DownloadInventoryReport(w http.ResponseWriter, r *http.Request) {
	assets, err := h.store.GetAllAssets(r.Context())
	if err != nil {
		h.internalServerError(w, r, err, "获取资产列表失败")
		return
	}

	// 先写到内存里，生成失败时还能返回 JSON 错误
	var buf bytes.Buffer
	if err := report.Write(&buf, assets, h.config.Report.SheetName); err != nil {
		h.internalServerError(w, r, err, "生成报表失败")
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.config.Report.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) EmailInventoryReport(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		To string `json:"to" validate:"omitempty,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 不指定收件人时发送到自己的邮箱
	to := req.To
	if to == "" {
		to = myInfo.Email
	}

	assets, err := h.store.GetAllAssets(r.Context())
	if err != nil {
		h.internalServerError(w, r, err, "获取资产列表失败")
		return
	}

	// 准备邮件，资产以快照的形式随消息一起发送
	mailMessage := domain.MailMessage{
		Type: domain.MailTypeInventoryReport,
		To:   to,
		Data: domain.InventoryReportMailData{
			RequestedBy: myInfo.Name,
			GeneratedAt: time.Now(),
			Assets:      assets,
		},
	}

	if err := h.mailer.Publish(r.Context(), mailMessage); err != nil {
		h.internalServerError(w, r, err, "发送报表邮件失败")
		return
	}

	h.successResponse(w, r, http.StatusAccepted, envelope{"message": "报表将通过邮件发送"})
}
