package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/temmie0232/ShiftManager/internal/domain"
	"github.com/temmie0232/ShiftManager/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type capabilitiesRequest struct {
	CanOpen          *bool `json:"canOpen"`
	CanCloseCleaning *bool `json:"canCloseCleaning"`
	CanCloseCashier  *bool `json:"canCloseCashier"`
	CanCloseFloor    *bool `json:"canCloseFloor"`
	CanOrder         *bool `json:"canOrder"`
}

func (c *capabilitiesRequest) applyTo(dst *domain.Capabilities) {
	if c == nil {
		return
	}
	if c.CanOpen != nil {
		dst.CanOpen = *c.CanOpen
	}
	if c.CanCloseCleaning != nil {
		dst.CanCloseCleaning = *c.CanCloseCleaning
	}
	if c.CanCloseCashier != nil {
		dst.CanCloseCashier = *c.CanCloseCashier
	}
	if c.CanCloseFloor != nil {
		dst.CanCloseFloor = *c.CanCloseFloor
	}
	if c.CanOrder != nil {
		dst.CanOrder = *c.CanOrder
	}
}

func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.repository.GetAllEmployees(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", employees)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username     string               `json:"username" validate:"omitempty,alphanum,max=32"`
		FullName     string               `json:"fullName" validate:"required,max=64"`
		Email        string               `json:"email" validate:"omitempty,email"`
		Role         string               `json:"role" validate:"required,oneof=员工 店长"`
		PIN          string               `json:"pin" validate:"omitempty,len=4,numeric"`
		Capabilities *capabilitiesRequest `json:"capabilities"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 未指定用户名时根据姓名的拼音生成
	if req.Username == "" {
		req.Username = utils.GenerateUsernameFromChineseName(req.FullName)
	}
	if req.Email == "" {
		req.Email = req.Username + "@" + h.config.Email.UserDomain
	}

	employee := &domain.Employee{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Role:     domain.Role(req.Role),
	}
	req.Capabilities.applyTo(&employee.Capabilities)

	if req.PIN != "" {
		pinHash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		employee.PINHash = string(pinHash)
	}

	if err := h.repository.CreateEmployee(r.Context(), employee); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "employees_username_key":
				h.conflict(w, r, "用户名已存在")
			case "employees_email_key":
				h.conflict(w, r, "邮箱已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.createdResponse(w, r, "员工创建成功", employee)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeInfoCtx).(*domain.Employee)
	h.successResponse(w, r, "获取员工信息成功", employee)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName     *string              `json:"fullName" validate:"omitempty,min=1,max=64"`
		Email        *string              `json:"email" validate:"omitempty,email"`
		Role         *string              `json:"role" validate:"omitempty,oneof=员工 店长"`
		IsActive     *bool                `json:"isActive"`
		Capabilities *capabilitiesRequest `json:"capabilities"`
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

	if req.FullName != nil {
		employee.FullName = *req.FullName
	}
	if req.Email != nil {
		employee.Email = *req.Email
	}
	if req.Role != nil {
		employee.Role = domain.Role(*req.Role)
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}
	req.Capabilities.applyTo(&employee.Capabilities)

	if err := h.repository.UpdateEmployee(r.Context(), employee); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "employees_email_key":
				h.conflict(w, r, "邮箱已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.conflict(w, r, "更新员工信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新员工信息成功", employee)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeInfoCtx).(*domain.Employee)

	if err := h.repository.DeleteEmployee(r.Context(), employee.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除员工成功", nil)
}

// UpdateEmployeePIN 员工修改自己的 PIN 时需要提供旧 PIN，店长可以直接重置
func (h *Handler) UpdateEmployeePIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPIN string `json:"oldPIN" validate:"omitempty,len=4,numeric"`
		PIN    string `json:"pin" validate:"required,len=4,numeric"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidatePIN(req.PIN); err != nil {
		h.badRequest(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.Employee)
	employee := r.Context().Value(EmployeeInfoCtx).(*domain.Employee)

	if myInfo.Role != domain.RoleManager && employee.PINHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(employee.PINHash), []byte(req.OldPIN)); err != nil {
			h.forbidden(w, r, "旧 PIN 错误")
			return
		}
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	employee.PINHash = string(pinHash)

	if err := h.repository.UpdateEmployee(r.Context(), employee); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.conflict(w, r, "更新 PIN 失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "PIN 设置成功", nil)
}
