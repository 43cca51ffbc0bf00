package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/locvowork/asset_management/internal/domain"
	"github.com/locvowork/asset_management/internal/logger"
)

// ReasonSelfManager rejects an employee that names itself as manager.
const ReasonSelfManager = "employee cannot be their own manager"

// EmployeeService is the HR write path. It keeps manager references valid
// and routes deletes through the DeletionGuard.
type EmployeeService struct {
	employees domain.EmployeeRepository
	guard     *DeletionGuard
	validate  *validator.Validate
	reads     ReadRetry
	now       func() time.Time
}

func NewEmployeeService(employees domain.EmployeeRepository, guard *DeletionGuard, reads ReadRetry) *EmployeeService {
	return &EmployeeService{
		employees: employees,
		guard:     guard,
		validate:  validator.New(),
		reads:     reads,
		now:       time.Now,
	}
}

// Get returns a single employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*domain.Employee, error) {
	return loadEmployee(ctx, s.employees, s.reads, id)
}

// List returns every employee.
func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return readWithRetry(ctx, s.reads, "employee", "", "list employees", func() ([]domain.Employee, error) {
		return s.employees.List(ctx)
	})
}

// Validate checks field rules, the manager reference and the uniqueness of
// email and employeeId. e.ID may be empty for a new record.
func (s *EmployeeService) Validate(ctx context.Context, e *domain.Employee) error {
	if err := s.validate.StructCtx(ctx, e); err != nil {
		return domain.Invalid(describeValidation(err))
	}

	if e.Manager != "" {
		if e.Manager == e.ID {
			return domain.Invalid(ReasonSelfManager)
		}
		if _, err := loadEmployee(ctx, s.employees, s.reads, e.Manager); err != nil {
			if domain.IsNotFound(err) {
				return domain.Invalid(fmt.Sprintf("manager %s does not exist", e.Manager))
			}
			return err
		}
	}

	if err := s.unique(ctx, e, domain.EmployeeFilter{Email: e.Email}, "email"); err != nil {
		return err
	}
	return s.unique(ctx, e, domain.EmployeeFilter{EmployeeID: e.EmployeeID}, "employeeId")
}

// unique rejects the record when another employee already carries the value.
// An update of the same record counts itself once.
func (s *EmployeeService) unique(ctx context.Context, e *domain.Employee, filter domain.EmployeeFilter, field string) error {
	n, err := countEmployees(ctx, s.employees, s.reads, filter)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if e.ID != "" && n == 1 {
		current, err := s.employees.GetByID(ctx, e.ID)
		switch {
		case err == nil:
			if (field == "email" && current.Email == e.Email) || (field == "employeeId" && current.EmployeeID == e.EmployeeID) {
				return nil
			}
		case !errors.Is(err, domain.ErrNoSuchDocument):
			return domain.StoreUnavailable("get employee", err)
		}
	}
	return domain.Invalid(fmt.Sprintf("%s is already in use", field))
}

// Save validates then persists e, creating it when it has no id yet.
func (s *EmployeeService) Save(ctx context.Context, e *domain.Employee) error {
	if e.ID == "" {
		return s.Create(ctx, e)
	}
	return s.Update(ctx, e)
}

// Create stores a new employee under a generated id.
func (s *EmployeeService) Create(ctx context.Context, e *domain.Employee) error {
	e.ID = ""
	if err := s.Validate(ctx, e); err != nil {
		return err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = s.now().UTC()
	e.UpdatedAt = e.CreatedAt
	if err := s.employees.Save(ctx, e); err != nil {
		return domain.StoreUnavailable("save employee", err)
	}
	logger.InfoLog(ctx, "created employee %s", e.ID)
	return nil
}

// Update replaces an existing employee.
func (s *EmployeeService) Update(ctx context.Context, e *domain.Employee) error {
	current, err := loadEmployee(ctx, s.employees, s.reads, e.ID)
	if err != nil {
		return err
	}
	if err := s.Validate(ctx, e); err != nil {
		return err
	}
	e.CreatedAt = current.CreatedAt
	e.UpdatedAt = s.now().UTC()
	if err := s.employees.Save(ctx, e); err != nil {
		return domain.StoreUnavailable("save employee", err)
	}
	return nil
}

// Delete removes the employee once the DeletionGuard allows it.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	d, err := s.guard.CanDeleteEmployee(ctx, id)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return domain.Conflict(d.Reason)
	}
	if err := s.employees.Delete(ctx, id); err != nil {
		return domain.StoreUnavailable("delete employee", err)
	}
	logger.InfoLog(ctx, "deleted employee %s", id)
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
