package leavetype

import (
	"context"
	"database/sql"

	"go-timeoff/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leavetype_repo.go -destination=mock/leavetype_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, t *LeaveType) error
	CreatePolicy(ctx context.Context, p *LeavePolicy) error
	FindAllByCompany(ctx context.Context, companyID string) ([]LeaveType, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveType, error)
	FindPolicy(ctx context.Context, companyID, leaveTypeID string) (*LeavePolicy, error)
	// EnsureCompOff atomically creates the COMP_OFF type and its policy if the
	// company does not have them yet, and returns the type id either way. Two
	// concurrent first grants race on the unique constraint, not on a
	// check-then-insert.
	EnsureCompOff(ctx context.Context, companyID string) (string, error)
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

func (r *repository) Create(ctx context.Context, t *LeaveType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) CreatePolicy(ctx context.Context, p *LeavePolicy) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]LeaveType, error) {
	var types []LeaveType
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("code ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveType, error) {
	var t LeaveType
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&t, "id = ?", id).Error
	return &t, err
}

func (r *repository) FindPolicy(ctx context.Context, companyID, leaveTypeID string) (*LeavePolicy, error) {
	var p LeavePolicy
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("leave_type_id = ?", leaveTypeID).
		First(&p).Error
	return &p, err
}

func (r *repository) EnsureCompOff(ctx context.Context, companyID string) (string, error) {
	var typeID string
	err := r.queryRower().QueryRowContext(ctx, `
		INSERT INTO leave_types (company_id, code, name, paid, requires_approval, created_at, updated_at)
		VALUES ($1, $2, 'Compensatory Off', TRUE, FALSE, now(), now())
		ON CONFLICT (company_id, code) DO UPDATE
		SET updated_at = now()
		RETURNING id
	`, companyID, CompOffCode).Scan(&typeID)
	if err != nil {
		return "", err
	}

	_, err = r.execer().ExecContext(ctx, `
		INSERT INTO leave_policies (company_id, leave_type_id, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (company_id, leave_type_id) DO NOTHING
	`, companyID, typeID)
	if err != nil {
		return "", err
	}

	return typeID, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	db, _ := r.db.DB()
	return db
}

func (r *repository) queryRower() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	db, _ := r.db.DB()
	return db
}
