package timesheet

import (
	"context"
	"database/sql"
	"time"

	"go-timeoff/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=timesheet_repo.go -destination=mock/timesheet_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, t *Timesheet) error
	FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*Timesheet, error)
	FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Timesheet, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, t *Timesheet) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*Timesheet, error) {
	var t Timesheet
	err := r.db.WithContext(ctx).
		Scopes(tenant.EmployeeScope(companyID, employeeID)).
		Where("work_date = ?", date.Format("2006-01-02")).
		First(&t).Error
	return &t, err
}

func (r *repository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]Timesheet, error) {
	var rows []Timesheet
	err := r.db.WithContext(ctx).
		Scopes(tenant.EmployeeScope(companyID, employeeID)).
		Order("work_date DESC").
		Find(&rows).Error
	return rows, err
}
