package calendar

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// DayInfo describes a single calendar day for a company.
type DayInfo struct {
	Date         string `json:"date"`
	IsWorkingDay bool   `json:"is_working_day"`
	IsWeekend    bool   `json:"is_weekend"`
	IsHoliday    bool   `json:"is_holiday"`
	Name         string `json:"name,omitempty"`
}

// Oracle answers working-day questions. Default rule: Sundays and the 2nd and
// 4th Saturday of each month are off; explicit CalendarDay rows override the
// default in either direction.
//
//go:generate mockgen -source=calendar_service.go -destination=mock/calendar_service_mock.go -package=mock
type Oracle interface {
	IsWorkingDay(ctx context.Context, companyID string, date time.Time) (bool, error)
	HolidayMap(ctx context.Context, companyID string, start, end time.Time) (map[string]DayInfo, error)
	DayInfo(ctx context.Context, companyID string, date time.Time) (DayInfo, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Oracle {
	l := zap.L().Named("calendar.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.service")
	}
	return &service{repo: repo, logger: l}
}

// isDefaultWeekend applies the built-in rule: Sunday always off, Saturday off
// on its 2nd and 4th occurrence in the month.
func isDefaultWeekend(date time.Time) bool {
	switch date.Weekday() {
	case time.Sunday:
		return true
	case time.Saturday:
		occurrence := (date.Day()-1)/7 + 1
		return occurrence == 2 || occurrence == 4
	default:
		return false
	}
}

func (s *service) IsWorkingDay(ctx context.Context, companyID string, date time.Time) (bool, error) {
	info, err := s.DayInfo(ctx, companyID, date)
	if err != nil {
		return false, err
	}
	return info.IsWorkingDay, nil
}

func (s *service) DayInfo(ctx context.Context, companyID string, date time.Time) (DayInfo, error) {
	m, err := s.HolidayMap(ctx, companyID, date, date)
	if err != nil {
		return DayInfo{}, err
	}
	return m[date.Format(dateLayout)], nil
}

func (s *service) HolidayMap(ctx context.Context, companyID string, start, end time.Time) (map[string]DayInfo, error) {
	overrides, err := s.repo.FindOverridesInRange(ctx, companyID, start, end)
	if err != nil {
		s.logger.Error("load calendar overrides failed",
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return nil, err
	}

	byDate := make(map[string]CalendarDay, len(overrides))
	for _, o := range overrides {
		byDate[o.Date.Format(dateLayout)] = o
	}

	result := make(map[string]DayInfo)
	for d := truncateToDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		weekend := isDefaultWeekend(d)
		info := DayInfo{
			Date:         key,
			IsWorkingDay: !weekend,
			IsWeekend:    weekend,
		}
		if o, ok := byDate[key]; ok {
			info.IsWorkingDay = o.IsWorkingDay
			info.IsHoliday = !o.IsWorkingDay && !weekend
			info.Name = o.Name
		}
		result[key] = info
	}
	return result, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
