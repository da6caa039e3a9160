package leaverequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-timeoff/internal/balance"
	balanceerrors "go-timeoff/internal/balance/errors"
	"go-timeoff/internal/calendar"
	"go-timeoff/internal/domain"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/events"
	leaverequesterrors "go-timeoff/internal/leaverequest/errors"
	"go-timeoff/internal/leavetype"
	leavetypeerrors "go-timeoff/internal/leavetype/errors"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/shared/contextutil"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=leaverequest_service.go -destination=mock/leaverequest_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, employeeID string, req CreateLeaveRequestRequest) (*LeaveRequestResponse, error)
	GetByID(ctx context.Context, companyID, id string) (*LeaveRequestResponse, error)
	ListByCompany(ctx context.Context, companyID string) ([]LeaveRequestResponse, error)
	ListByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveRequestResponse, error)
	Review(ctx context.Context, companyID, requestID, approverID, role, action string, req ReviewLeaveRequestRequest) (*LeaveRequestResponse, error)
	BulkReview(ctx context.Context, companyID, approverID, role string, req BulkReviewRequest) (*BulkReviewResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	balances  balance.Repository
	types     leavetype.Repository
	employees employee.Repository
	oracle    calendar.Oracle
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances balance.Repository,
	types leavetype.Repository,
	employees employee.Repository,
	oracle calendar.Oracle,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		balances:  balances,
		types:     types,
		employees: employees,
		oracle:    oracle,
		outbox:    outbox,
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, companyID, employeeID string, req CreateLeaveRequestRequest) (*LeaveRequestResponse, error) {
	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, leaverequesterrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, leaverequesterrors.ErrInvalidDateFormat
	}
	if endDate.Before(startDate) {
		return nil, leaverequesterrors.ErrInvalidDateRange
	}

	leaveType, err := s.types.FindByIDAndCompany(ctx, companyID, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leavetypeerrors.ErrLeaveTypeNotFound
		}
		return nil, err
	}
	if _, err := s.types.FindPolicy(ctx, companyID, req.LeaveTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leavetypeerrors.ErrPolicyNotFound
		}
		return nil, err
	}

	days, err := s.oracle.HolidayMap(ctx, companyID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	// Every day in the span must be workable before durations are resolved,
	// so the first off day in date order names the rejection.
	workingDays := 0
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		info := days[d.Format(dateLayout)]
		if !info.IsWorkingDay {
			return nil, leaverequesterrors.HolidayInRange(info.Date)
		}
		workingDays++
	}
	totalHours := float64(workingDays) * HoursPerWorkingDay

	hours, durationType, err := resolveHours(req, workingDays, totalHours)
	if err != nil {
		return nil, err
	}
	if hours <= 0 || hours > totalHours {
		return nil, leaverequesterrors.ErrHoursOutOfRange
	}
	hours = balance.Round2(hours)
	if leaveType.MaxPerRequestHours != nil && hours > *leaveType.MaxPerRequestHours {
		return nil, leaverequesterrors.ErrMaxPerRequestExceeded
	}

	status := StatusPending
	var decidedAt *time.Time
	if !leaveType.RequiresApproval {
		status = StatusApproved
		now := time.Now().UTC()
		decidedAt = &now
	}

	request := &LeaveRequest{
		ID:             uuid.New(),
		CompanyID:      uuid.MustParse(companyID),
		EmployeeID:     uuid.MustParse(employeeID),
		LeaveTypeID:    leaveType.ID,
		StartDate:      startDate,
		EndDate:        endDate,
		DurationType:   durationType,
		HalfDaySegment: req.HalfDaySegment,
		Hours:          hours,
		Reason:         req.Reason,
		Status:         status,
		DecidedAt:      decidedAt,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	txBalances := s.balances.WithTx(tx)
	txRepo := s.repo.WithTx(tx)

	var snapshot *balance.LeaveBalance
	if leaveType.Paid {
		if _, err := txBalances.EnsureRow(ctx, companyID, employeeID, req.LeaveTypeID); err != nil {
			return nil, err
		}
		snapshot, err = txBalances.FindSnapshotForUpdate(ctx, employeeID, req.LeaveTypeID)
		if err != nil {
			return nil, err
		}
		if snapshot.BalanceHours+balance.Tolerance < hours {
			return nil, balanceerrors.ErrInsufficientBalance
		}
	}

	// Overlap is read under the balance row lock for paid types, so two
	// concurrent creates for the same employee serialize and the second
	// sees the first's insert.
	overlaps, err := txRepo.HasOverlappingRequest(ctx, companyID, employeeID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, leaverequesterrors.ErrOverlappingRequest
	}

	if leaveType.Paid {
		delta := balance.Delta{Balance: -hours, Pending: +hours}
		if status == StatusApproved {
			delta = balance.Delta{Balance: -hours, Booked: +hours}
		}
		if err := balance.Apply(snapshot, delta); err != nil {
			return nil, err
		}
		if err := txBalances.SaveHours(ctx, snapshot); err != nil {
			return nil, err
		}
	}

	if err := txRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	if leaveType.RequiresApproval {
		subject, err := s.employees.FindByIDAndCompany(ctx, companyID, employeeID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// No manager on file means the request simply waits for an
		// admin-tier reviewer; there is no approval row to address.
		if err == nil && subject.ManagerID != nil {
			approval := &Approval{
				ID:          uuid.New(),
				CompanyID:   request.CompanyID,
				SubjectType: SubjectLeaveRequest,
				SubjectID:   request.ID,
				ApproverID:  *subject.ManagerID,
				Decision:    DecisionPending,
			}
			if err := txRepo.CreateApproval(ctx, approval); err != nil {
				return nil, err
			}
		}
	} else {
		if err := s.appendDecisionEvent(ctx, s.outbox.WithTx(tx), request, employeeID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("leave request created",
		zap.String("request_id", request.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("status", status),
		zap.Float64("hours", hours),
	)

	resp := toResponse(request)
	return &resp, nil
}

// resolveHours applies the duration rules: a half day is exactly one working
// day and four hours, a full day books every working hour of the span, and
// custom takes the caller's figure. A request with hours but no duration type
// is treated as custom.
func resolveHours(req CreateLeaveRequestRequest, workingDays int, totalHours float64) (float64, string, error) {
	durationType := req.DurationType
	if durationType == "" {
		if req.Hours != nil {
			durationType = DurationCustom
		} else {
			durationType = DurationFullDay
		}
	}

	if durationType != DurationHalfDay && req.HalfDaySegment != nil {
		return 0, "", leaverequesterrors.ErrUnexpectedSegment
	}

	switch durationType {
	case DurationHalfDay:
		if workingDays != 1 {
			return 0, "", leaverequesterrors.ErrHalfDayRange
		}
		if req.HalfDaySegment == nil {
			return 0, "", leaverequesterrors.ErrHalfDaySegmentRequired
		}
		return HoursPerWorkingDay / 2, durationType, nil
	case DurationCustom:
		if req.Hours == nil || *req.Hours <= 0 {
			return 0, "", leaverequesterrors.ErrHoursOutOfRange
		}
		return *req.Hours, durationType, nil
	default:
		return totalHours, DurationFullDay, nil
	}
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (*LeaveRequestResponse, error) {
	l, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaverequesterrors.ErrRequestNotFound
		}
		return nil, err
	}
	resp := toResponse(l)
	return &resp, nil
}

func (s *service) ListByCompany(ctx context.Context, companyID string) ([]LeaveRequestResponse, error) {
	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *service) ListByEmployee(ctx context.Context, companyID, employeeID string) ([]LeaveRequestResponse, error) {
	rows, err := s.repo.FindAllByEmployee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *service) Review(ctx context.Context, companyID, requestID, approverID, role, action string, req ReviewLeaveRequestRequest) (*LeaveRequestResponse, error) {
	if action != ActionApprove && action != ActionReject {
		return nil, leaverequesterrors.ErrInvalidAction
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	txRepo := s.repo.WithTx(tx)

	request, err := txRepo.FindByIDForUpdate(ctx, companyID, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, leaverequesterrors.ErrRequestNotFound
		}
		return nil, err
	}

	if err := s.authorizeReviewer(ctx, companyID, request.EmployeeID.String(), approverID, role); err != nil {
		return nil, err
	}
	if !isEligible(action, request.Status) {
		return nil, leaverequesterrors.ErrInvalidStateTransition
	}

	if err := s.applyDecision(ctx, tx, request, action, approverID, req.Comment); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("leave request reviewed",
		zap.String("request_id", requestID),
		zap.String("approver_id", approverID),
		zap.String("action", action),
		zap.String("status", request.Status),
	)

	resp := toResponse(request)
	return &resp, nil
}

func (s *service) BulkReview(ctx context.Context, companyID, approverID, role string, req BulkReviewRequest) (*BulkReviewResponse, error) {
	byIDs := len(req.RequestIDs) > 0
	byMonth := req.EmployeeID != "" && req.Year > 0 && req.Month >= 1 && req.Month <= 12
	if !byIDs && !byMonth {
		return nil, leaverequesterrors.ErrEmptySelector
	}

	approver, err := s.employees.FindByIDAndCompany(ctx, companyID, approverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaverequesterrors.ErrApproverNotFound
		}
		return nil, err
	}
	isAdmin := domain.IsAdminTier(role)

	var candidates []LeaveRequest
	if byIDs {
		candidates, err = s.repo.FindByIDs(ctx, companyID, req.RequestIDs)
	} else {
		candidates, err = s.repo.FindByMonth(ctx, companyID, req.EmployeeID, req.Year, req.Month)
	}
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, leaverequesterrors.ErrNoRequestsMatched
	}

	authorized := candidates
	if !isAdmin {
		authorized = authorized[:0]
		managed := map[string]bool{}
		for _, c := range candidates {
			subjectID := c.EmployeeID.String()
			ok, seen := managed[subjectID]
			if !seen {
				subject, err := s.employees.FindByIDAndCompany(ctx, companyID, subjectID)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, err
				}
				ok = err == nil && subject.ManagerID != nil && *subject.ManagerID == approver.ID
				managed[subjectID] = ok
			}
			if ok {
				authorized = append(authorized, c)
			}
		}
		if len(authorized) == 0 {
			return nil, leaverequesterrors.ErrNotAuthorizedToReview
		}
	}

	evaluated := make([]string, 0, len(authorized))
	eligible := make([]LeaveRequest, 0, len(authorized))
	skipped := make([]SkippedRequest, 0)
	for _, c := range authorized {
		evaluated = append(evaluated, c.ID.String())
		if isEligible(req.Action, c.Status) {
			eligible = append(eligible, c)
		} else {
			skipped = append(skipped, SkippedRequest{ID: c.ID.String(), State: c.Status})
		}
	}
	if len(eligible) == 0 {
		return nil, leaverequesterrors.ErrNoneEligible
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	txRepo := s.repo.WithTx(tx)
	updated := make([]string, 0, len(eligible))
	for _, c := range eligible {
		// Re-read under the row lock so a request decided since selection
		// fails the state precondition and aborts the whole batch.
		request, err := txRepo.FindByIDForUpdate(ctx, companyID, c.ID.String())
		if err != nil {
			return nil, err
		}
		if !isEligible(req.Action, request.Status) {
			return nil, leaverequesterrors.ErrInvalidStateTransition
		}
		if err := s.applyDecision(ctx, tx, request, req.Action, approverID, req.Comment); err != nil {
			return nil, err
		}
		updated = append(updated, request.ID.String())
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("bulk review applied",
		zap.String("approver_id", approverID),
		zap.String("action", req.Action),
		zap.Int("updated", len(updated)),
		zap.Int("skipped", len(skipped)),
	)

	return &BulkReviewResponse{
		UpdatedCount:        len(updated),
		UpdatedRequestIDs:   updated,
		EvaluatedRequestIDs: evaluated,
		Skipped:             skipped,
	}, nil
}

// applyDecision moves a locked request to the action's target state, applies
// the ledger delta for paid types, settles the approval row, and stages the
// decision event. Callers own the transaction.
func (s *service) applyDecision(ctx context.Context, tx *sql.Tx, request *LeaveRequest, action, approverID string, comment *string) error {
	target := targetStatus(action)
	now := time.Now().UTC()

	leaveType, err := s.types.FindByIDAndCompany(ctx, request.CompanyID.String(), request.LeaveTypeID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leavetypeerrors.ErrLeaveTypeNotFound
		}
		return err
	}

	if delta, ok := deltaFor(request.Status, target, request.Hours); ok && leaveType.Paid {
		txBalances := s.balances.WithTx(tx)
		if _, err := txBalances.EnsureRow(ctx, request.CompanyID.String(), request.EmployeeID.String(), request.LeaveTypeID.String()); err != nil {
			return err
		}
		snapshot, err := txBalances.FindSnapshotForUpdate(ctx, request.EmployeeID.String(), request.LeaveTypeID.String())
		if err != nil {
			return err
		}
		if err := balance.Apply(snapshot, delta); err != nil {
			return err
		}
		if err := txBalances.SaveHours(ctx, snapshot); err != nil {
			return err
		}
	}

	txRepo := s.repo.WithTx(tx)
	if err := txRepo.UpdateDecision(ctx, request.ID.String(), target, approverID, now); err != nil {
		return err
	}
	decision := DecisionApproved
	if target == StatusRejected {
		decision = DecisionRejected
	}
	if err := txRepo.UpdateApprovalDecision(ctx, request.ID.String(), decision, comment, now); err != nil {
		return err
	}

	request.Status = target
	approver := uuid.MustParse(approverID)
	request.DecidedBy = &approver
	request.DecidedAt = &now

	return s.appendDecisionEvent(ctx, s.outbox.WithTx(tx), request, approverID)
}

func (s *service) appendDecisionEvent(ctx context.Context, outbox kafka.OutboxRepository, request *LeaveRequest, decidedBy string) error {
	event := events.LeaveRequestDecidedEvent{
		EventType:   "leave_request.decided",
		RequestID:   request.ID.String(),
		CompanyID:   request.CompanyID.String(),
		EmployeeID:  request.EmployeeID.String(),
		LeaveTypeID: request.LeaveTypeID.String(),
		Status:      request.Status,
		Hours:       request.Hours,
		DecidedBy:   decidedBy,
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		CompanyID:     request.CompanyID.String(),
		AggregateType: "leave_request",
		AggregateID:   request.ID.String(),
		EventType:     event.EventType,
		Topic:         events.LeaveRequestDecidedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) authorizeReviewer(ctx context.Context, companyID, subjectEmployeeID, approverID, role string) error {
	if domain.IsAdminTier(role) {
		return nil
	}
	subject, err := s.employees.FindByIDAndCompany(ctx, companyID, subjectEmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaverequesterrors.ErrNotAuthorizedToReview
		}
		return err
	}
	if subject.ManagerID == nil || subject.ManagerID.String() != approverID {
		return leaverequesterrors.ErrNotAuthorizedToReview
	}
	return nil
}

func toResponse(l *LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:             l.ID.String(),
		CompanyID:      l.CompanyID.String(),
		EmployeeID:     l.EmployeeID.String(),
		LeaveTypeID:    l.LeaveTypeID.String(),
		StartDate:      l.StartDate.Format(dateLayout),
		EndDate:        l.EndDate.Format(dateLayout),
		DurationType:   l.DurationType,
		HalfDaySegment: l.HalfDaySegment,
		Hours:          l.Hours,
		Reason:         l.Reason,
		Status:         l.Status,
	}
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		resp.DecidedBy = &v
	}
	if l.DecidedAt != nil {
		v := l.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &v
	}
	return resp
}

func toResponses(rows []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(rows))
	for i := range rows {
		resp[i] = toResponse(&rows[i])
	}
	return resp
}
