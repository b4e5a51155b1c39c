package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/temmie0232/ShiftManager/internal/domain"
	"github.com/temmie0232/ShiftManager/internal/planning"
)

// WithTx 在一个数据库事务中执行 fn，fn 返回错误时回滚
func (r *Repository) WithTx(ctx context.Context, fn func(tx planning.Tx) error) error {
	ctx, cancel := r.transactionContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(&planningTx{q: tx}); err != nil {
		return err
	}

	return mapError(tx.Commit())
}

func (r *Repository) GetSubmissionStatus(ctx context.Context, key domain.ShiftKey) (*domain.SubmissionStatus, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return getSubmissionStatus(ctx, r.dbpool, key, false)
}

func (r *Repository) ListShiftRequests(ctx context.Context, employeeID int64, filter domain.HistoryFilter) ([]*domain.ShiftRequest, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	conditions := []string{"employee_id = $1"}
	args := []any{employeeID}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)))
	}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		conditions = append(conditions, fmt.Sprintf("month = $%d", len(args)))
	}

	query := `
		SELECT id, employee_id, year, month, min_hours, max_hours, min_days_per_week, max_days_per_week, submitted_at
		FROM shift_requests
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY year DESC, month DESC
	`

	return listShiftRequests(ctx, r.dbpool, query, args...)
}

// planningTx 实现 planning.Tx，所有方法共享同一个 *sql.Tx
type planningTx struct {
	q querier
}

func (t *planningTx) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	exists := false
	query := `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`
	if err := t.q.QueryRowContext(ctx, query, employeeID).Scan(&exists); err != nil {
		return false, mapError(err)
	}

	return exists, nil
}

func (t *planningTx) LockSubmissionStatus(ctx context.Context, key domain.ShiftKey) (*domain.SubmissionStatus, error) {
	return getSubmissionStatus(ctx, t.q, key, true)
}

func (t *planningTx) InsertSubmissionStatus(ctx context.Context, key domain.ShiftKey, createdAt time.Time) (*domain.SubmissionStatus, error) {
	// 并发插入时后到者会等待先到者提交，然后拿到同一行并持有行锁
	query := `
		INSERT INTO shift_submission_statuses (employee_id, year, month, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, year, month)
		DO UPDATE SET employee_id = EXCLUDED.employee_id
		RETURNING is_submitted, submitted_at, created_at
	`

	status := &domain.SubmissionStatus{
		EmployeeID: key.EmployeeID,
		Year:       key.Period.Year,
		Month:      key.Period.Month,
	}

	var submittedAt sql.NullTime
	args := []any{key.EmployeeID, key.Period.Year, key.Period.Month, createdAt}
	if err := t.q.QueryRowContext(ctx, query, args...).Scan(&status.IsSubmitted, &submittedAt, &status.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	status.SubmittedAt = nullTimePtr(submittedAt)

	return status, nil
}

func (t *planningTx) UpdateSubmissionStatus(ctx context.Context, status *domain.SubmissionStatus) error {
	query := `
		UPDATE shift_submission_statuses
		SET is_submitted = $1, submitted_at = $2
		WHERE employee_id = $3 AND year = $4 AND month = $5
	`

	args := []any{status.IsSubmitted, status.SubmittedAt, status.EmployeeID, status.Year, status.Month}
	return execAffectingOne(ctx, t.q, query, args...)
}

func (t *planningTx) GetDraft(ctx context.Context, key domain.ShiftKey) (*domain.DraftShiftRequest, error) {
	query := `
		SELECT id, min_hours, max_hours, min_days_per_week, max_days_per_week, created_at, updated_at
		FROM draft_shift_requests
		WHERE employee_id = $1 AND year = $2 AND month = $3
	`

	draft := &domain.DraftShiftRequest{
		EmployeeID: key.EmployeeID,
		Year:       key.Period.Year,
		Month:      key.Period.Month,
	}

	var minHours, maxHours, minDays, maxDays sql.NullInt32
	dst := []any{&draft.ID, &minHours, &maxHours, &minDays, &maxDays, &draft.CreatedAt, &draft.UpdatedAt}
	if err := t.q.QueryRowContext(ctx, query, key.EmployeeID, key.Period.Year, key.Period.Month).Scan(dst...); err != nil {
		return nil, mapError(err)
	}
	draft.MinHours = nullInt32Ptr(minHours)
	draft.MaxHours = nullInt32Ptr(maxHours)
	draft.MinDaysPerWeek = nullInt32Ptr(minDays)
	draft.MaxDaysPerWeek = nullInt32Ptr(maxDays)

	details, err := listDetails(ctx, t.q, "draft_shift_details", "draft_id", draft.ID)
	if err != nil {
		return nil, err
	}
	draft.Details = details

	return draft, nil
}

func (t *planningTx) InsertDraft(ctx context.Context, draft *domain.DraftShiftRequest) error {
	query := `
		INSERT INTO draft_shift_requests (employee_id, year, month, min_hours, max_hours, min_days_per_week, max_days_per_week, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	args := []any{
		draft.EmployeeID, draft.Year, draft.Month,
		draft.MinHours, draft.MaxHours, draft.MinDaysPerWeek, draft.MaxDaysPerWeek,
		draft.CreatedAt, draft.UpdatedAt,
	}
	if err := t.q.QueryRowContext(ctx, query, args...).Scan(&draft.ID); err != nil {
		return mapError(err)
	}

	return insertDetails(ctx, t.q, "draft_shift_details", "draft_id", draft.ID, draft.Details)
}

func (t *planningTx) UpdateDraftPreferences(ctx context.Context, draft *domain.DraftShiftRequest) error {
	query := `
		UPDATE draft_shift_requests
		SET min_hours = $1, max_hours = $2, min_days_per_week = $3, max_days_per_week = $4, updated_at = $5
		WHERE id = $6
	`

	args := []any{draft.MinHours, draft.MaxHours, draft.MinDaysPerWeek, draft.MaxDaysPerWeek, draft.UpdatedAt, draft.ID}
	return execAffectingOne(ctx, t.q, query, args...)
}

func (t *planningTx) ReplaceDraftDetails(ctx context.Context, draft *domain.DraftShiftRequest) error {
	// 先把原先的条目删除再插入
	query := `DELETE FROM draft_shift_details WHERE draft_id = $1`
	if _, err := t.q.ExecContext(ctx, query, draft.ID); err != nil {
		return mapError(err)
	}

	if err := insertDetails(ctx, t.q, "draft_shift_details", "draft_id", draft.ID, draft.Details); err != nil {
		return err
	}

	query = `UPDATE draft_shift_requests SET updated_at = $1 WHERE id = $2`
	return execAffectingOne(ctx, t.q, query, draft.UpdatedAt, draft.ID)
}

func (t *planningTx) DeleteDraft(ctx context.Context, draftID int64) error {
	// 条目通过外键级联删除
	query := `DELETE FROM draft_shift_requests WHERE id = $1`
	return execAffectingOne(ctx, t.q, query, draftID)
}

func (t *planningTx) GetLatestShiftRequest(ctx context.Context, employeeID int64) (*domain.ShiftRequest, error) {
	query := `
		SELECT id, employee_id, year, month, min_hours, max_hours, min_days_per_week, max_days_per_week, submitted_at
		FROM shift_requests
		WHERE employee_id = $1
		ORDER BY year DESC, month DESC
		LIMIT 1
	`

	requests, err := listShiftRequests(ctx, t.q, query, employeeID)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, domain.ErrNotFound
	}

	return requests[0], nil
}

func (t *planningTx) ShiftRequestExists(ctx context.Context, key domain.ShiftKey) (bool, error) {
	exists := false
	query := `SELECT EXISTS (SELECT 1 FROM shift_requests WHERE employee_id = $1 AND year = $2 AND month = $3)`
	if err := t.q.QueryRowContext(ctx, query, key.EmployeeID, key.Period.Year, key.Period.Month).Scan(&exists); err != nil {
		return false, mapError(err)
	}

	return exists, nil
}

func (t *planningTx) InsertShiftRequest(ctx context.Context, request *domain.ShiftRequest) error {
	query := `
		INSERT INTO shift_requests (employee_id, year, month, min_hours, max_hours, min_days_per_week, max_days_per_week, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	args := []any{
		request.EmployeeID, request.Year, request.Month,
		request.MinHours, request.MaxHours, request.MinDaysPerWeek, request.MaxDaysPerWeek,
		request.SubmittedAt,
	}
	if err := t.q.QueryRowContext(ctx, query, args...).Scan(&request.ID); err != nil {
		return mapError(err)
	}

	return insertDetails(ctx, t.q, "shift_details", "shift_request_id", request.ID, request.Details)
}

func getSubmissionStatus(ctx context.Context, q querier, key domain.ShiftKey, forUpdate bool) (*domain.SubmissionStatus, error) {
	query := `
		SELECT is_submitted, submitted_at, created_at
		FROM shift_submission_statuses
		WHERE employee_id = $1 AND year = $2 AND month = $3
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	status := &domain.SubmissionStatus{
		EmployeeID: key.EmployeeID,
		Year:       key.Period.Year,
		Month:      key.Period.Month,
	}

	var submittedAt sql.NullTime
	if err := q.QueryRowContext(ctx, query, key.EmployeeID, key.Period.Year, key.Period.Month).Scan(&status.IsSubmitted, &submittedAt, &status.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	status.SubmittedAt = nullTimePtr(submittedAt)

	return status, nil
}

// listShiftRequests 执行返回 shift_requests 行的查询，并加载每条记录的条目
func listShiftRequests(ctx context.Context, q querier, query string, args ...any) ([]*domain.ShiftRequest, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	requests := make([]*domain.ShiftRequest, 0)
	for rows.Next() {
		request := &domain.ShiftRequest{}
		dst := []any{
			&request.ID, &request.EmployeeID, &request.Year, &request.Month,
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

	if err := loadRequestDetails(ctx, q, requests); err != nil {
		return nil, err
	}

	return requests, nil
}

// loadRequestDetails 用一次查询加载所有记录的条目，再按记录分组
func loadRequestDetails(ctx context.Context, q querier, requests []*domain.ShiftRequest) error {
	if len(requests) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(requests))
	byID := make(map[int64]*domain.ShiftRequest, len(requests))
	for _, request := range requests {
		request.Details = make([]domain.ShiftDetail, 0)
		ids = append(ids, request.ID)
		byID[request.ID] = request
	}

	query := `
		SELECT shift_request_id, to_char(date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_holiday, color
		FROM shift_details
		WHERE shift_request_id = ANY($1)
		ORDER BY shift_request_id, date
	`

	rows, err := q.QueryContext(ctx, query, ids)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			requestID         int64
			detail            domain.ShiftDetail
			start, end, color sql.NullString
		)
		if err := rows.Scan(&requestID, &detail.Date, &start, &end, &detail.IsHoliday, &color); err != nil {
			return err
		}
		detail.StartTime = nullStringPtr(start)
		detail.EndTime = nullStringPtr(end)
		detail.Color = nullStringPtr(color)

		if request, ok := byID[requestID]; ok {
			request.Details = append(request.Details, detail)
		}
	}

	return rows.Err()
}

// listDetails 和 insertDetails 中的表名和列名只来自本包内的常量
func listDetails(ctx context.Context, q querier, table, ownerColumn string, ownerID int64) ([]domain.ShiftDetail, error) {
	query := fmt.Sprintf(`
		SELECT to_char(date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_holiday, color
		FROM %s
		WHERE %s = $1
		ORDER BY date
	`, table, ownerColumn)

	rows, err := q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	details := make([]domain.ShiftDetail, 0)
	for rows.Next() {
		var (
			detail            domain.ShiftDetail
			start, end, color sql.NullString
		)
		if err := rows.Scan(&detail.Date, &start, &end, &detail.IsHoliday, &color); err != nil {
			return nil, err
		}
		detail.StartTime = nullStringPtr(start)
		detail.EndTime = nullStringPtr(end)
		detail.Color = nullStringPtr(color)
		details = append(details, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

func insertDetails(ctx context.Context, q querier, table, ownerColumn string, ownerID int64, details []domain.ShiftDetail) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, date, start_time, end_time, is_holiday, color)
		VALUES ($1, $2::date, $3::time, $4::time, $5, $6)
	`, table, ownerColumn)

	for _, detail := range details {
		args := []any{ownerID, detail.Date, detail.StartTime, detail.EndTime, detail.IsHoliday, detail.Color}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return mapError(err)
		}
	}

	return nil
}

func execAffectingOne(ctx context.Context, q querier, query string, args ...any) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

var (
	_ planning.Store = (*Repository)(nil)
	_ planning.Tx    = (*planningTx)(nil)
)
