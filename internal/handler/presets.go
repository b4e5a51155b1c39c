package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/temmie0232/ShiftManager/internal/domain"
	"github.com/temmie0232/ShiftManager/internal/utils"
)

const defaultPresetColor = "#4f46e5"

func (h *Handler) GetPresets(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeInfoCtx).(*domain.Employee)

	presets, err := h.repository.GetPresetsByEmployeeID(r.Context(), employee.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取时间预设成功", presets)
}

func (h *Handler) CreatePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name" validate:"required,max=32"`
		StartTime string `json:"startTime" validate:"required,clock"`
		EndTime   string `json:"endTime" validate:"required,clock"`
		Color     string `json:"color" validate:"omitempty,hexcolor"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee := r.Context().Value(EmployeeInfoCtx).(*domain.Employee)

	preset := &domain.TimePreset{
		EmployeeID: employee.ID,
		Name:       req.Name,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Color:      req.Color,
	}
	if preset.Color == "" {
		preset.Color = defaultPresetColor
	}

	if err := utils.ValidateTimePreset(preset); err != nil {
		h.domainError(w, r, err)
		return
	}

	if err := h.repository.CreatePreset(r.Context(), preset); err != nil {
		h.presetWriteError(w, r, err)
		return
	}

	h.createdResponse(w, r, "创建时间预设成功", preset)
}

func (h *Handler) GetPreset(w http.ResponseWriter, r *http.Request) {
	preset := r.Context().Value(TimePresetCtx).(*domain.TimePreset)
	h.successResponse(w, r, "获取时间预设成功", preset)
}

func (h *Handler) UpdatePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      *string `json:"name" validate:"omitempty,min=1,max=32"`
		StartTime *string `json:"startTime" validate:"omitempty,clock"`
		EndTime   *string `json:"endTime" validate:"omitempty,clock"`
		Color     *string `json:"color" validate:"omitempty,hexcolor"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	preset := r.Context().Value(TimePresetCtx).(*domain.TimePreset)

	if req.Name != nil {
		preset.Name = *req.Name
	}
	if req.StartTime != nil {
		preset.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		preset.EndTime = *req.EndTime
	}
	if req.Color != nil {
		preset.Color = *req.Color
	}

	if err := utils.ValidateTimePreset(preset); err != nil {
		h.domainError(w, r, err)
		return
	}

	if err := h.repository.UpdatePreset(r.Context(), preset); err != nil {
		h.presetWriteError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新时间预设成功", preset)
}

func (h *Handler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	preset := r.Context().Value(TimePresetCtx).(*domain.TimePreset)

	if err := h.repository.DeletePreset(r.Context(), preset.EmployeeID, preset.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除时间预设成功", nil)
}

func (h *Handler) presetWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "time_presets_employee_name_key":
			h.conflict(w, r, "预设名称已存在")
		case "time_presets_time_range_check":
			h.badRequest(w, r, errors.New("开始时间必须早于结束时间"))
		default:
			h.internalServerError(w, r, err)
		}
	default:
		h.internalServerError(w, r, err)
	}
}
