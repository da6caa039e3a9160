package balance

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper expires stale comp-off credits before a balance is reported, so a
// read never shows hours that have already lapsed. Implemented by the comp-off
// manager; absence of anything to expire is a no-op.
type Sweeper interface {
	ExpireForEmployee(ctx context.Context, companyID, employeeID string, asOf time.Time) error
}

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	ListByEmployee(ctx context.Context, companyID, employeeID string) ([]BalanceResponse, error)
}

type service struct {
	repo    Repository
	sweeper Sweeper
	logger  *zap.Logger
}

func NewService(repo Repository, sweeper Sweeper, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{repo: repo, sweeper: sweeper, logger: l}
}

func (s *service) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]BalanceResponse, error) {
	if s.sweeper != nil {
		if err := s.sweeper.ExpireForEmployee(ctx, companyID, employeeID, time.Now().UTC()); err != nil {
			s.logger.Error("expiry sweep before balance read failed",
				zap.String("employee_id", employeeID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	rows, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}

	resp := make([]BalanceResponse, len(rows))
	for i, b := range rows {
		resp[i] = mapToResponse(b)
	}
	return resp, nil
}

func mapToResponse(b LeaveBalance) BalanceResponse {
	return BalanceResponse{
		ID:           b.ID.String(),
		EmployeeID:   b.EmployeeID.String(),
		LeaveTypeID:  b.LeaveTypeID.String(),
		BalanceHours: Round2(b.BalanceHours),
		PendingHours: Round2(b.PendingHours),
		BookedHours:  Round2(b.BookedHours),
		AsOfDate:     b.AsOfDate.Format("2006-01-02"),
	}
}
