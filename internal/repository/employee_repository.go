package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/repository/builder"
)

var employeeColumns = []string{
	"id", "name", "employee_id", "email", "department", "position", "status", "manager", "created_at", "updated_at",
}

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *sql.DB) domain.EmployeeRepository {
	return &employeeRepository{db: db}
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var e domain.Employee
	var manager sql.NullString
	if err := row.Scan(&e.ID, &e.Name, &e.EmployeeID, &e.Email, &e.Department, &e.Position,
		&e.Status, &manager, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Manager = manager.String
	return &e, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From("employees").
		Where("id = ?", id).
		Build()

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrNoSuchDocument, "employee %s", id)
	}
	return e, err
}

func (r *employeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	query, args := builder.NewSQLBuilder().
		Select(employeeColumns...).
		From("employees").
		OrderBy("id ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) CountByFilter(ctx context.Context, filter domain.EmployeeFilter) (int64, error) {
	b := builder.NewSQLBuilder().Select("COUNT(*)").From("employees")
	if filter.Manager != "" {
		b.Where("manager = ?", filter.Manager)
	}
	if filter.Email != "" {
		b.Where("email = ?", filter.Email)
	}
	if filter.EmployeeID != "" {
		b.Where("employee_id = ?", filter.EmployeeID)
	}
	query, args := b.Build()

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *employeeRepository) Save(ctx context.Context, e *domain.Employee) error {
	query, args := builder.NewSQLBuilder().
		Insert("employees", employeeColumns...).
		Values(e.ID, e.Name, e.EmployeeID, e.Email, e.Department, e.Position,
			e.Status, nullable(e.Manager), e.CreatedAt, e.UpdatedAt).
		OnConflictUpdate("id", "name", "employee_id", "email", "department", "position", "status", "manager", "updated_at").
		Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	query, args := builder.NewSQLBuilder().
		Delete("employees").
		Where("id = ?", id).
		Build()

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}
