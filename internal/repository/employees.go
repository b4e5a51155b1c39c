package repository

import (
	"context"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

const employeeColumns = `
	id, username, pin_hash, full_name, email, role,
	can_open, can_close_cleaning, can_close_cashier, can_close_floor, can_order,
	is_active, created_at, version
`

func employeeDst(e *domain.Employee) []any {
	return []any{
		&e.ID, &e.Username, &e.PINHash, &e.FullName, &e.Email, &e.Role,
		&e.Capabilities.CanOpen, &e.Capabilities.CanCloseCleaning, &e.Capabilities.CanCloseCashier,
		&e.Capabilities.CanCloseFloor, &e.Capabilities.CanOrder,
		&e.IsActive, &e.CreatedAt, &e.Version,
	}
}

func (r *Repository) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	employee := &domain.Employee{}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(employeeDst(employee)...); err != nil {
		return nil, err
	}

	return employee, nil
}

func (r *Repository) GetEmployeeByUsername(ctx context.Context, username string) (*domain.Employee, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE username = $1`

	employee := &domain.Employee{}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(employeeDst(employee)...); err != nil {
		return nil, err
	}

	return employee, nil
}

func (r *Repository) GetAllEmployees(ctx context.Context) ([]*domain.Employee, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY id`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		employee := &domain.Employee{}
		if err := rows.Scan(employeeDst(employee)...); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

func (r *Repository) CreateEmployee(ctx context.Context, employee *domain.Employee) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO employees (
			username, pin_hash, full_name, email, role,
			can_open, can_close_cleaning, can_close_cashier, can_close_floor, can_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, is_active, created_at, version
	`

	c := employee.Capabilities
	args := []any{
		employee.Username, employee.PINHash, employee.FullName, employee.Email, employee.Role,
		c.CanOpen, c.CanCloseCleaning, c.CanCloseCashier, c.CanCloseFloor, c.CanOrder,
	}
	dst := []any{&employee.ID, &employee.IsActive, &employee.CreatedAt, &employee.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// UpdateEmployee 使用 version 做乐观锁，版本不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateEmployee(ctx context.Context, employee *domain.Employee) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE employees
		SET
			pin_hash = $1,
			full_name = $2,
			email = $3,
			role = $4,
			can_open = $5,
			can_close_cleaning = $6,
			can_close_cashier = $7,
			can_close_floor = $8,
			can_order = $9,
			is_active = $10,
			version = version + 1
		WHERE id = $11 AND version = $12
		RETURNING username, created_at, version
	`

	c := employee.Capabilities
	args := []any{
		employee.PINHash, employee.FullName, employee.Email, employee.Role,
		c.CanOpen, c.CanCloseCleaning, c.CanCloseCashier, c.CanCloseFloor, c.CanOrder,
		employee.IsActive, employee.ID, employee.Version,
	}
	dst := []any{&employee.Username, &employee.CreatedAt, &employee.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteEmployee(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `DELETE FROM employees WHERE id = $1`
	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CheckEmailIfExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	isExists := false
	query := `SELECT EXISTS (SELECT 1 FROM employees WHERE email = $1)`
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}
