package repository

import (
	"context"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

func (r *Repository) CreateShiftSubmissionForm(ctx context.Context, form *domain.ShiftSubmissionForm) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO shift_submission_forms (deadline, form_url, message, is_template)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sent_at
	`

	args := []any{form.Deadline, form.FormURL, form.Message, form.IsTemplate}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&form.ID, &form.SentAt); err != nil {
		return err
	}

	return nil
}

// GetLatestShiftFormTemplate 返回最近一次保存为模板的通知内容
func (r *Repository) GetLatestShiftFormTemplate(ctx context.Context) (*domain.ShiftSubmissionForm, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT id, deadline, form_url, message, is_template, sent_at
		FROM shift_submission_forms
		WHERE is_template
		ORDER BY sent_at DESC
		LIMIT 1
	`

	form := &domain.ShiftSubmissionForm{}
	dst := []any{&form.ID, &form.Deadline, &form.FormURL, &form.Message, &form.IsTemplate, &form.SentAt}
	if err := r.dbpool.QueryRowContext(ctx, query).Scan(dst...); err != nil {
		return nil, err
	}

	return form, nil
}

func (r *Repository) CreateShiftDocument(ctx context.Context, document *domain.ShiftDocument) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO shift_documents (file_name, file_path, message)
		VALUES ($1, $2, $3)
		RETURNING id, sent_at
	`

	args := []any{document.FileName, document.FilePath, document.Message}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&document.ID, &document.SentAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllShiftDocuments(ctx context.Context) ([]*domain.ShiftDocument, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT id, file_name, file_path, message, sent_at
		FROM shift_documents
		ORDER BY sent_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	documents := make([]*domain.ShiftDocument, 0)
	for rows.Next() {
		document := &domain.ShiftDocument{}
		if err := rows.Scan(&document.ID, &document.FileName, &document.FilePath, &document.Message, &document.SentAt); err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return documents, nil
}
