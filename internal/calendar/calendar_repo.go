package calendar

import (
	"context"
	"time"

	"go-timeoff/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=calendar_repo.go -destination=mock/calendar_repo_mock.go -package=mock
type Repository interface {
	FindOverridesInRange(ctx context.Context, companyID string, start, end time.Time) ([]CalendarDay, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindOverridesInRange(ctx context.Context, companyID string, start, end time.Time) ([]CalendarDay, error) {
	var rows []CalendarDay
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("date BETWEEN ? AND ?", start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}
