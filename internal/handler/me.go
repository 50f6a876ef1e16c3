package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, http.StatusOK, envelope{
		"message": "获取个人信息成功",
		"user":    myInfo,
	})
}
