package repository

import (
	"context"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

// GetShiftRequestsByPeriod 返回某个周期所有员工的提交，按员工姓名排序
func (r *Repository) GetShiftRequestsByPeriod(ctx context.Context, period domain.Period) ([]*domain.ShiftRequest, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT sr.id, sr.employee_id, e.full_name, sr.min_hours, sr.max_hours, sr.min_days_per_week, sr.max_days_per_week, sr.submitted_at
		FROM shift_requests sr
		JOIN employees e ON e.id = sr.employee_id
		WHERE sr.year = $1 AND sr.month = $2
		ORDER BY e.full_name, sr.employee_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, period.Year, period.Month)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	requests := make([]*domain.ShiftRequest, 0)
	for rows.Next() {
		request := &domain.ShiftRequest{
			Year:  period.Year,
			Month: period.Month,
		}
		dst := []any{
			&request.ID, &request.EmployeeID, &request.FullName,
			&request.MinHours, &request.MaxHours, &request.MinDaysPerWeek, &request.MaxDaysPerWeek,
			&request.SubmittedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := loadRequestDetails(ctx, r.dbpool, requests); err != nil {
		return nil, err
	}

	return requests, nil
}

// DeleteShiftRequest 删除一条已提交的记录，并把对应周期的提交状态恢复为未提交，员工可以重新填写
func (r *Repository) DeleteShiftRequest(ctx context.Context, id int64) error {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var employeeID int64
	var year, month int
	query := `DELETE FROM shift_requests WHERE id = $1 RETURNING employee_id, year, month`
	if err := tx.QueryRowContext(ctx, query, id).Scan(&employeeID, &year, &month); err != nil {
		return mapError(err)
	}

	query = `
		UPDATE shift_submission_statuses
		SET is_submitted = FALSE, submitted_at = NULL
		WHERE employee_id = $1 AND year = $2 AND month = $3
	`
	if _, err := tx.ExecContext(ctx, query, employeeID, year, month); err != nil {
		return mapError(err)
	}

	return mapError(tx.Commit())
}
