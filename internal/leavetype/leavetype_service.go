package leavetype

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	leavetypeerrors "go-timeoff/internal/leavetype/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const catalogKeyPrefix = "leave_types:all:"

func catalogKey(companyID string) string {
	return catalogKeyPrefix + companyID
}

//go:generate mockgen -source=leavetype_service.go -destination=mock/leavetype_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, companyID string) ([]LeaveTypeResponse, error)
	Create(ctx context.Context, companyID string, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	CreatePolicy(ctx context.Context, companyID, leaveTypeID string, req CreatePolicyRequest) (LeavePolicyResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("leavetype.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leavetype.service")
	}
	return &service{db: db, repo: repo, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

// GetAll serves the catalog from redis when possible; the catalog is
// read-mostly and invalidated on every write.
func (s *service) GetAll(ctx context.Context, companyID string) ([]LeaveTypeResponse, error) {
	cacheKey := catalogKey(companyID)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var resp []LeaveTypeResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		types, err := s.repo.FindAllByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}

		resp := make([]LeaveTypeResponse, len(types))
		for i, t := range types {
			resp[i] = mapToResponse(t)
		}

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, 30*time.Minute)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]LeaveTypeResponse), nil
}

func (s *service) Create(ctx context.Context, companyID string, req CreateLeaveTypeRequest) (LeaveTypeResponse, error) {
	s.logger.Debug("create leave type requested",
		zap.String("company_id", companyID),
		zap.String("code", req.Code),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return LeaveTypeResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
	}

	t := &LeaveType{
		ID:                 uuid.New(),
		CompanyID:          companyUUID,
		Code:               req.Code,
		Name:               req.Name,
		Paid:               req.Paid,
		RequiresApproval:   req.RequiresApproval,
		MaxPerRequestHours: req.MaxPerRequestHours,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return LeaveTypeResponse{}, leavetypeerrors.ErrDuplicateCode
		}
		s.logger.Error("create leave type persist failed", zap.Error(err))
		return LeaveTypeResponse{}, err
	}

	s.invalidateCatalog(ctx, companyID)
	s.logger.Info("create leave type success",
		zap.String("leave_type_id", t.ID.String()),
		zap.String("code", t.Code),
	)
	return mapToResponse(*t), nil
}

func (s *service) CreatePolicy(ctx context.Context, companyID, leaveTypeID string, req CreatePolicyRequest) (LeavePolicyResponse, error) {
	if _, err := s.repo.FindByIDAndCompany(ctx, companyID, leaveTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeavePolicyResponse{}, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return LeavePolicyResponse{}, err
	}

	p := &LeavePolicy{
		ID:               uuid.New(),
		CompanyID:        uuid.MustParse(companyID),
		LeaveTypeID:      uuid.MustParse(leaveTypeID),
		AccrualRule:      req.AccrualRule,
		CarryForwardRule: req.CarryForwardRule,
	}
	if err := s.repo.CreatePolicy(ctx, p); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return LeavePolicyResponse{}, leavetypeerrors.ErrDuplicatePolicy
		}
		s.logger.Error("create leave policy persist failed", zap.Error(err))
		return LeavePolicyResponse{}, err
	}

	return LeavePolicyResponse{
		ID:          p.ID.String(),
		CompanyID:   p.CompanyID.String(),
		LeaveTypeID: p.LeaveTypeID.String(),
	}, nil
}

func (s *service) invalidateCatalog(ctx context.Context, companyID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := catalogKey(companyID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn("catalog cache invalidation failed",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}
}

func mapToResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                 t.ID.String(),
		CompanyID:          t.CompanyID.String(),
		Code:               t.Code,
		Name:               t.Name,
		Paid:               t.Paid,
		RequiresApproval:   t.RequiresApproval,
		MaxPerRequestHours: t.MaxPerRequestHours,
	}
}
