package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/temmie0232/ShiftManager/internal/domain"
)

// GetShiftRequestsByPeriod 默认返回当前目标周期的所有提交
func (h *Handler) GetShiftRequestsByPeriod(w http.ResponseWriter, r *http.Request) {
	period := h.planner.Clock().CurrentPeriod()

	if s := r.URL.Query().Get("year"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			h.badRequest(w, r, errors.New("年份无效"))
			return
		}
		period.Year = year
	}
	if s := r.URL.Query().Get("month"); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil {
			h.badRequest(w, r, errors.New("月份无效"))
			return
		}
		period.Month = month
	}
	if !period.Valid() {
		h.badRequest(w, r, errors.New("无效的周期"))
		return
	}

	requests, err := h.repository.GetShiftRequestsByPeriod(r.Context(), period)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取提交列表成功", requests)
}

// DeleteShiftRequest 删除后该员工可以重新提交这个周期
func (h *Handler) DeleteShiftRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
	if err != nil {
		h.badRequest(w, r, errors.New("提交ID无效"))
		return
	}

	if err := h.repository.DeleteShiftRequest(r.Context(), requestID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.notFound(w, r, "提交记录不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除提交成功", nil)
}
