package handler

import (
	"context"
	"net/http"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

func contextWithRole(r *http.Request, role domain.Role) context.Context {
	return context.WithValue(r.Context(), RoleCtxKey, string(role))
}

func contextWithEmployees(r *http.Request, me, target *domain.Employee) context.Context {
	ctx := context.WithValue(r.Context(), MyInfoCtx, me)
	return context.WithValue(ctx, EmployeeInfoCtx, target)
}
