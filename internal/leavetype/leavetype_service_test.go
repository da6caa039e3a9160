package leavetype_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-timeoff/internal/leavetype"
	leavetypeerrors "go-timeoff/internal/leavetype/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeTypeRepository struct {
	createFn             func(ctx context.Context, t *leavetype.LeaveType) error
	createPolicyFn       func(ctx context.Context, p *leavetype.LeavePolicy) error
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]leavetype.LeaveType, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*leavetype.LeaveType, error)
	findPolicyFn         func(ctx context.Context, companyID, leaveTypeID string) (*leavetype.LeavePolicy, error)
	ensureCompOffFn      func(ctx context.Context, companyID string) (string, error)
}

func (f *fakeTypeRepository) WithTx(tx *sql.Tx) leavetype.Repository { return f }

func (f *fakeTypeRepository) Create(ctx context.Context, t *leavetype.LeaveType) error {
	return f.createFn(ctx, t)
}

func (f *fakeTypeRepository) CreatePolicy(ctx context.Context, p *leavetype.LeavePolicy) error {
	return f.createPolicyFn(ctx, p)
}

func (f *fakeTypeRepository) FindAllByCompany(ctx context.Context, companyID string) ([]leavetype.LeaveType, error) {
	return f.findAllByCompanyFn(ctx, companyID)
}

func (f *fakeTypeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leavetype.LeaveType, error) {
	return f.findByIDAndCompanyFn(ctx, companyID, id)
}

func (f *fakeTypeRepository) FindPolicy(ctx context.Context, companyID, leaveTypeID string) (*leavetype.LeavePolicy, error) {
	return f.findPolicyFn(ctx, companyID, leaveTypeID)
}

func (f *fakeTypeRepository) EnsureCompOff(ctx context.Context, companyID string) (string, error) {
	return f.ensureCompOffFn(ctx, companyID)
}

func TestLeaveTypeService_GetAll(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	cacheKey := "leave_types:all:" + companyID

	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	t.Run("success cache hit skips the repository", func(t *testing.T) {
		cached := []leavetype.LeaveTypeResponse{
			{ID: uuid.New().String(), Code: "ANNUAL", Name: "Annual Leave", Paid: true},
		}
		payload, _ := json.Marshal(cached)

		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet(cacheKey).SetVal(string(payload))

		repo := &fakeTypeRepository{
			findAllByCompanyFn: func(ctx context.Context, cid string) ([]leavetype.LeaveType, error) {
				t.Fatal("repository must not be hit on a cache hit")
				return nil, nil
			},
		}

		svc := leavetype.NewService(db, repo, rdb)
		resp, err := svc.GetAll(ctx, companyID)

		assert.NoError(t, err)
		assert.Equal(t, cached, resp)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("success cache miss reads the repository and fills the cache", func(t *testing.T) {
		typeID := uuid.New()
		companyUUID := uuid.MustParse(companyID)
		rows := []leavetype.LeaveType{
			{ID: typeID, CompanyID: companyUUID, Code: "SICK", Name: "Sick Leave", Paid: true, RequiresApproval: true},
		}

		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet(cacheKey).RedisNil()
		redisMock.Regexp().ExpectSet(cacheKey, `.*`, 30*time.Minute).SetVal("OK")

		repo := &fakeTypeRepository{
			findAllByCompanyFn: func(ctx context.Context, cid string) ([]leavetype.LeaveType, error) {
				assert.Equal(t, companyID, cid)
				return rows, nil
			},
		}

		svc := leavetype.NewService(db, repo, rdb)
		resp, err := svc.GetAll(ctx, companyID)

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "SICK", resp[0].Code)
		assert.True(t, resp[0].RequiresApproval)
	})
}

func TestLeaveTypeService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	t.Run("success persists and invalidates the catalog cache", func(t *testing.T) {
		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectDel("leave_types:all:" + companyID).SetVal(1)

		var created *leavetype.LeaveType
		repo := &fakeTypeRepository{
			createFn: func(ctx context.Context, lt *leavetype.LeaveType) error {
				created = lt
				return nil
			},
		}

		svc := leavetype.NewService(db, repo, rdb)
		resp, err := svc.Create(ctx, companyID, leavetype.CreateLeaveTypeRequest{
			Code:             "ANNUAL",
			Name:             "Annual Leave",
			Paid:             true,
			RequiresApproval: true,
		})

		assert.NoError(t, err)
		assert.NotNil(t, created)
		assert.Equal(t, "ANNUAL", created.Code)
		assert.Equal(t, companyID, resp.CompanyID)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("negative duplicate code maps the unique violation", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()
		repo := &fakeTypeRepository{
			createFn: func(ctx context.Context, lt *leavetype.LeaveType) error {
				return &pgconn.PgError{Code: "23505"}
			},
		}

		svc := leavetype.NewService(db, repo, rdb)
		_, err := svc.Create(ctx, companyID, leavetype.CreateLeaveTypeRequest{
			Code: "ANNUAL",
			Name: "Annual Leave",
		})

		assert.ErrorIs(t, err, leavetypeerrors.ErrDuplicateCode)
	})
}

func TestLeaveTypeService_CreatePolicy(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	leaveTypeID := uuid.New().String()

	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	t.Run("success", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()
		accrual := `{"hoursPerMonth": 14.67}`
		repo := &fakeTypeRepository{
			findByIDAndCompanyFn: func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
				return &leavetype.LeaveType{ID: uuid.MustParse(leaveTypeID)}, nil
			},
			createPolicyFn: func(ctx context.Context, p *leavetype.LeavePolicy) error {
				assert.Equal(t, leaveTypeID, p.LeaveTypeID.String())
				assert.Equal(t, &accrual, p.AccrualRule)
				return nil
			},
		}

		svc := leavetype.NewService(db, repo, rdb)
		resp, err := svc.CreatePolicy(ctx, companyID, leaveTypeID, leavetype.CreatePolicyRequest{
			AccrualRule: &accrual,
		})

		assert.NoError(t, err)
		assert.Equal(t, leaveTypeID, resp.LeaveTypeID)
	})

	t.Run("negative unknown leave type", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()
		repo := &fakeTypeRepository{
			findByIDAndCompanyFn: func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}

		svc := leavetype.NewService(db, repo, rdb)
		_, err := svc.CreatePolicy(ctx, companyID, leaveTypeID, leavetype.CreatePolicyRequest{})

		assert.ErrorIs(t, err, leavetypeerrors.ErrLeaveTypeNotFound)
	})

	t.Run("negative duplicate policy", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()
		repo := &fakeTypeRepository{
			findByIDAndCompanyFn: func(ctx context.Context, cid, id string) (*leavetype.LeaveType, error) {
				return &leavetype.LeaveType{ID: uuid.MustParse(leaveTypeID)}, nil
			},
			createPolicyFn: func(ctx context.Context, p *leavetype.LeavePolicy) error {
				return &pgconn.PgError{Code: "23505"}
			},
		}

		svc := leavetype.NewService(db, repo, rdb)
		_, err := svc.CreatePolicy(ctx, companyID, leaveTypeID, leavetype.CreatePolicyRequest{})

		assert.ErrorIs(t, err, leavetypeerrors.ErrDuplicatePolicy)
	})
}
