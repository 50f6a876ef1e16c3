package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/asset-tracker/backend/internal/repository"
)

const recentAssetsLimit = 2

// 新增与修改共用同一套字段约束，type 与 status 只接受固定取值
type createAssetRequest struct {
	Name         string             `json:"name"`
	Type         domain.AssetType   `json:"type" validate:"required,oneof=Laptop Phone Tablet Server Mouse Keyboard Monitor Printer"`
	Status       domain.AssetStatus `json:"status" validate:"omitempty,oneof=Available Assigned Maintenance Retired"`
	AssignedTo   string             `json:"assignedTo"`
	EmployeeID   string             `json:"employeeId" validate:"required"`
	SerialNumber string             `json:"serialNumber" validate:"required"`
}

type updateAssetRequest struct {
	Name         *string             `json:"name"`
	Type         *domain.AssetType   `json:"type" validate:"omitnil,oneof=Laptop Phone Tablet Server Mouse Keyboard Monitor Printer"`
	Status       *domain.AssetStatus `json:"status" validate:"omitnil,oneof=Available Assigned Maintenance Retired"`
	AssignedTo   *string             `json:"assignedTo"`
	EmployeeID   *string             `json:"employeeId" validate:"omitnil,min=1"`
	SerialNumber *string             `json:"serialNumber" validate:"omitnil,min=1"`
}

func (req *updateAssetRequest) patch() domain.AssetPatch {
	return domain.AssetPatch{
		Name:         req.Name,
		Type:         req.Type,
		Status:       req.Status,
		AssignedTo:   req.AssignedTo,
		EmployeeID:   req.EmployeeID,
		SerialNumber: req.SerialNumber,
	}
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	asset := &domain.Asset{
		Name:         req.Name,
		Type:         req.Type,
		Status:       req.Status,
		AssignedTo:   req.AssignedTo,
		EmployeeID:   req.EmployeeID,
		SerialNumber: req.SerialNumber,
	}
	if asset.Status == "" {
		asset.Status = domain.StatusAvailable
	}

	if err := h.store.CreateAsset(r.Context(), asset); err != nil {
		h.internalServerError(w, r, err, "保存资产失败")
		return
	}

	h.successResponse(w, r, http.StatusCreated, envelope{"asset": asset})
}

func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateAssetRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	patch := req.patch()
	if patch.IsEmpty() {
		h.badRequest(w, r, errors.New("没有需要更新的字段"))
		return
	}

	asset, err := h.store.UpdateAsset(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			slog.Warn("要更新的资产不存在", "id", id)
			h.notFound(w, r, "资产不存在")
		default:
			h.internalServerError(w, r, err, "更新资产失败")
		}
		return
	}

	h.successResponse(w, r, http.StatusOK, envelope{"asset": asset})
}

// GetAllAssets 直接返回数组，不使用 envelope
func (h *Handler) GetAllAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.store.GetAllAssets(r.Context())
	if err != nil {
		h.internalServerError(w, r, err, "获取资产列表失败")
		return
	}

	h.writeJSON(w, r, http.StatusOK, assets)
}

func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteAsset(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.notFound(w, r, "资产不存在")
		default:
			h.internalServerError(w, r, err, "删除资产失败")
		}
		return
	}

	h.successResponse(w, r, http.StatusOK, envelope{"message": "资产已删除"})
}

func (h *Handler) GetAssetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetAssetStats(r.Context())
	if err != nil {
		h.internalServerError(w, r, err, "获取资产统计失败")
		return
	}

	h.successResponse(w, r, http.StatusOK, envelope{"stats": stats})
}

func (h *Handler) GetRecentAssets(w http.ResponseWriter, r *http.Request) {
	recent, err := h.store.GetRecentAssets(r.Context(), recentAssetsLimit)
	if err != nil {
		h.internalServerError(w, r, err, "获取最近资产失败")
		return
	}

	h.successResponse(w, r, http.StatusOK, envelope{"recent": recent})
}
