package repository

import (
	"context"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

func (r *Repository) GetPresetsByEmployeeID(ctx context.Context, employeeID int64) ([]*domain.TimePreset, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT id, name, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), color, created_at
		FROM time_presets
		WHERE employee_id = $1
		ORDER BY start_time, id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	presets := make([]*domain.TimePreset, 0)
	for rows.Next() {
		preset := &domain.TimePreset{EmployeeID: employeeID}
		dst := []any{&preset.ID, &preset.Name, &preset.StartTime, &preset.EndTime, &preset.Color, &preset.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		presets = append(presets, preset)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return presets, nil
}

func (r *Repository) GetPresetByID(ctx context.Context, employeeID, id int64) (*domain.TimePreset, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT name, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), color, created_at
		FROM time_presets
		WHERE id = $1 AND employee_id = $2
	`

	preset := &domain.TimePreset{ID: id, EmployeeID: employeeID}
	dst := []any{&preset.Name, &preset.StartTime, &preset.EndTime, &preset.Color, &preset.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id, employeeID).Scan(dst...); err != nil {
		return nil, err
	}

	return preset, nil
}

func (r *Repository) CreatePreset(ctx context.Context, preset *domain.TimePreset) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO time_presets (employee_id, name, start_time, end_time, color)
		VALUES ($1, $2, $3::time, $4::time, $5)
		RETURNING id, created_at
	`

	args := []any{preset.EmployeeID, preset.Name, preset.StartTime, preset.EndTime, preset.Color}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&preset.ID, &preset.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdatePreset(ctx context.Context, preset *domain.TimePreset) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE time_presets
		SET name = $1, start_time = $2::time, end_time = $3::time, color = $4
		WHERE id = $5 AND employee_id = $6
		RETURNING created_at
	`

	args := []any{preset.Name, preset.StartTime, preset.EndTime, preset.Color, preset.ID, preset.EmployeeID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&preset.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePreset(ctx context.Context, employeeID, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `DELETE FROM time_presets WHERE id = $1 AND employee_id = $2`
	if _, err := r.dbpool.ExecContext(ctx, query, id, employeeID); err != nil {
		return err
	}

	return nil
}
