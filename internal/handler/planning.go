package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/temmie0232/ShiftManager/internal/domain"
	"github.com/temmie0232/ShiftManager/internal/planning"
)

type shiftDetailRequest struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime *string `json:"startTime" validate:"omitempty,clock"`
	EndTime   *string `json:"endTime" validate:"omitempty,clock"`
	IsHoliday bool    `json:"isHoliday"`
	Color     *string `json:"color" validate:"omitempty,hexcolor"`
}

func toShiftDetails(entries []shiftDetailRequest) []domain.ShiftDetail {
	details := make([]domain.ShiftDetail, 0, len(entries))
	for _, entry := range entries {
		details = append(details, domain.ShiftDetail{
			Date:      entry.Date,
			StartTime: entry.StartTime,
			EndTime:   entry.EndTime,
			IsHoliday: entry.IsHoliday,
			Color:     entry.Color,
		})
	}
	return details
}

func (h *Handler) GetSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	key := r.Context().Value(ShiftKeyCtx).(domain.ShiftKey)

	status, err := h.planner.GetOrCreateStatus(r.Context(), key)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取提交状态成功", status)
}

// GetDraft 已提交的周期不再创建草稿
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	key := r.Context().Value(ShiftKeyCtx).(domain.ShiftKey)

	finalized, err := h.planner.IsFinalized(r.Context(), key)
	if err != nil {
		h.domainError(w, r, err)
		return
	}
	if finalized {
		h.successResponse(w, r, "该周期已提交", map[string]bool{"submitted": true})
		return
	}

	draft, err := h.planner.GetOrCreateDraft(r.Context(), key)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取草稿成功", draft)
}

func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MinHours       *int32 `json:"minHours" validate:"omitempty,min=0"`
		MaxHours       *int32 `json:"maxHours" validate:"omitempty,min=0"`
		MinDaysPerWeek *int32 `json:"minDaysPerWeek" validate:"omitempty,min=0,max=7"`
		MaxDaysPerWeek *int32 `json:"maxDaysPerWeek" validate:"omitempty,min=0,max=7"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	key := r.Context().Value(ShiftKeyCtx).(domain.ShiftKey)

	draft, err := h.planner.UpdateDraft(r.Context(), key, domain.Preferences{
		MinHours:       req.MinHours,
		MaxHours:       req.MaxHours,
		MinDaysPerWeek: req.MinDaysPerWeek,
		MaxDaysPerWeek: req.MaxDaysPerWeek,
	})
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "草稿已保存", draft)
}

func (h *Handler) ReplaceDraftDetails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShiftDetails []shiftDetailRequest `json:"shiftDetails" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	key := r.Context().Value(ShiftKeyCtx).(domain.ShiftKey)

	details, err := h.planner.ReplaceDraftDetails(r.Context(), key, toShiftDetails(req.ShiftDetails))
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "草稿条目已保存", details)
}

// SubmitShiftRequest 请求体可以为空，此时直接提交草稿中的内容
func (h *Handler) SubmitShiftRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MinHours       *int32                `json:"minHours" validate:"omitempty,min=0"`
		MaxHours       *int32                `json:"maxHours" validate:"omitempty,min=0"`
		MinDaysPerWeek *int32                `json:"minDaysPerWeek" validate:"omitempty,min=0,max=7"`
		MaxDaysPerWeek *int32                `json:"maxDaysPerWeek" validate:"omitempty,min=0,max=7"`
		ShiftDetails   *[]shiftDetailRequest `json:"shiftDetails" validate:"omitempty,dive"`
	}

	hasBody := true
	if err := h.readJSON(r, &req); err != nil {
		if !errors.Is(err, io.EOF) {
			h.badRequest(w, r, err)
			return
		}
		hasBody = false
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	var override *planning.SubmitOverride
	if hasBody {
		override = &planning.SubmitOverride{
			Preferences: &domain.Preferences{
				MinHours:       req.MinHours,
				MaxHours:       req.MaxHours,
				MinDaysPerWeek: req.MinDaysPerWeek,
				MaxDaysPerWeek: req.MaxDaysPerWeek,
			},
		}
		if req.ShiftDetails != nil {
			override.Details = toShiftDetails(*req.ShiftDetails)
		}
	}

	key := r.Context().Value(ShiftKeyCtx).(domain.ShiftKey)

	request, err := h.planner.Submit(r.Context(), key, override)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	employee := r.Context().Value(EmployeeInfoCtx).(*domain.Employee)
	h.publish(r.Context(), &domain.NotificationMessage{
		Type: domain.NotificationShiftSubmitted,
		To:   employee.Email,
		Data: domain.ShiftSubmittedMailData{
			FullName:    employee.FullName,
			Year:        request.Year,
			Month:       request.Month,
			DetailCount: len(request.Details),
			SubmittedAt: request.SubmittedAt,
		},
	})

	h.createdResponse(w, r, "班次提交成功", request)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	filter := domain.HistoryFilter{}

	if s := r.URL.Query().Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			h.badRequest(w, r, errors.New("年份无效"))
			return
		}
		filter.Year = &year
	}
	if s := r.URL.Query().Get("month"); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil {
			h.badRequest(w, r, errors.New("月份无效"))
			return
		}
		filter.Month = &month
	}

	employee := r.Context().Value(EmployeeInfoCtx).(*domain.Employee)

	history, err := h.planner.ListHistory(r.Context(), employee.ID, filter)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取历史记录成功", history)
}

// publish 投递通知失败只记录日志，不影响已完成的操作
func (h *Handler) publish(ctx context.Context, msg *domain.NotificationMessage) {
	if h.notifier == nil || msg.To == "" {
		return
	}
	if err := h.notifier.Publish(ctx, msg); err != nil {
		slog.Warn("投递通知失败", "type", msg.Type, "to", msg.To, "error", err)
	}
}
