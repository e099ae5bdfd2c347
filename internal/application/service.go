// Package application owns the loan-application lifecycle: submission with
// its eligibility and single-active-application checks, listing, lifecycle
// step updates, disbursal bookkeeping, extensions, and the cached dashboard
// summary.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lend/internal/domain"
	"lend/internal/terms"
	"lend/pkg/cache"
	"lend/pkg/config"
	pkgerrors "lend/pkg/errors"
	"lend/pkg/logger"
)

// LoanRepository is the persistence surface for loan applications.
type LoanRepository interface {
	Create(ctx context.Context, app *domain.LoanApplication) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.LoanApplication, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.LoanApplication, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) error
	UpdateStep(ctx context.Context, id uuid.UUID, step string) error
	UpdateDisbursal(ctx context.Context, id uuid.UUID, disbursedAt, dueDate time.Time, outstanding decimal.Decimal) error
	UpdateExtension(ctx context.Context, id uuid.UUID, dueDate time.Time, extensionCount int) error
}

// UserSource fetches users for submission checks.
type UserSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// EligibilityChecker answers whether a user may open a new application.
type EligibilityChecker interface {
	CheckCanApply(ctx context.Context, user *domain.User, now time.Time) *domain.HoldInfo
}

// HoldError carries the structured hold verdict that blocked a submission.
// It unwraps to the matching sentinel so callers can branch with errors.Is.
type HoldError struct {
	Info     domain.HoldInfo
	sentinel error
}

func (e *HoldError) Error() string {
	return fmt.Sprintf("application blocked: %s", e.Info.Reason)
}

func (e *HoldError) Unwrap() error { return e.sentinel }

type Service struct {
	loans       LoanRepository
	users       UserSource
	eligibility EligibilityChecker
	engine      *terms.Engine
	cache       cache.Cache
	cfg         config.LendingConfig
	logger      logger.Logger
}

func NewService(loans LoanRepository, users UserSource, eligibility EligibilityChecker, engine *terms.Engine, c cache.Cache, cfg config.LendingConfig, log logger.Logger) *Service {
	return &Service{
		loans:       loans,
		users:       users,
		eligibility: eligibility,
		engine:      engine,
		cache:       c,
		cfg:         cfg,
		logger:      log,
	}
}

// Submit opens a new loan application. It enforces, in order: the user
// exists and is not deleted, no hold or cooling period blocks them, no
// other application is active, and the principal is positive and within
// the loan limit.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, principal decimal.Decimal, purpose string, installments int) (*domain.LoanApplication, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status == domain.UserStatusDeleted {
		return nil, pkgerrors.ErrUserDeleted
	}

	now := time.Now().UTC()
	if hold := s.eligibility.CheckCanApply(ctx, user, now); hold != nil {
		sentinel := pkgerrors.ErrUserOnHold
		if !hold.CanReapply {
			sentinel = pkgerrors.ErrCoolingPeriod
		}
		s.logger.Info("submission blocked by hold", map[string]interface{}{
			"user_id":   userID.String(),
			"hold_type": hold.HoldType,
			"reason":    hold.Reason,
		})
		return nil, &HoldError{Info: *hold, sentinel: sentinel}
	}

	existing, err := s.loans.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list applications")
	}
	for _, app := range existing {
		if app.IsActive() {
			return nil, pkgerrors.ErrActiveApplicationExists
		}
	}

	if !principal.IsPositive() {
		return nil, pkgerrors.ErrInvalidPrincipal
	}
	if principal.GreaterThan(user.LoanLimit) {
		return nil, pkgerrors.ErrLimitExceeded
	}
	if installments < 1 {
		installments = 1
	}

	app := &domain.LoanApplication{
		ID:               uuid.New(),
		UserID:           userID,
		Status:           domain.StatusSubmitted,
		Principal:        principal,
		Purpose:          purpose,
		InstallmentCount: installments,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.loans.Create(ctx, app); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create application")
	}

	s.invalidateDashboard(ctx, userID)
	s.logger.Info("loan application submitted", map[string]interface{}{
		"user_id":        userID.String(),
		"application_id": app.ID.String(),
		"principal":      principal.String(),
	})
	return app, nil
}

// Find returns one application by id.
func (s *Service) Find(ctx context.Context, applicationID uuid.UUID) (*domain.LoanApplication, error) {
	return s.loans.FindByID(ctx, applicationID)
}

// List returns all of a user's applications, most recent first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*domain.LoanApplication, error) {
	return s.loans.FindByUser(ctx, userID)
}

// Active returns the user's single non-terminal application, or nil.
func (s *Service) Active(ctx context.Context, userID uuid.UUID) (*domain.LoanApplication, error) {
	apps, err := s.loans.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, app := range apps {
		if app.IsActive() {
			return app, nil
		}
	}
	return nil, nil
}

// UpdateStep records form progress on an application.
func (s *Service) UpdateStep(ctx context.Context, applicationID uuid.UUID, step string) error {
	if err := s.loans.UpdateStep(ctx, applicationID, step); err != nil {
		return pkgerrors.Wrap(err, "failed to update step")
	}
	return nil
}

// MarkDisbursed records a disbursal: the clock starts now, the due date is
// the configured tenure out, and the outstanding balance opens at the
// principal.
func (s *Service) MarkDisbursed(ctx context.Context, applicationID uuid.UUID, now time.Time) (*domain.LoanApplication, error) {
	app, err := s.loans.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	dueDate := now.AddDate(0, 0, s.engine.TenureDays(app.InstallmentCount))
	if err := s.loans.UpdateDisbursal(ctx, applicationID, now, dueDate, app.Principal); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to record disbursal")
	}
	if err := s.loans.UpdateStatus(ctx, applicationID, domain.StatusDisbursed); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to update status")
	}

	app.Status = domain.StatusDisbursed
	app.DisbursedAt = &now
	app.DueDate = &dueDate
	app.OutstandingBalance = app.Principal
	s.invalidateDashboard(ctx, app.UserID)
	return app, nil
}

// QuoteExtension prices the next due-date extension without applying it.
func (s *Service) QuoteExtension(ctx context.Context, applicationID uuid.UUID, now time.Time) (*terms.ExtensionQuote, error) {
	app, err := s.loans.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return s.engine.QuoteExtension(app, app.ExtensionCount+1, now)
}

// ApplyExtension prices and applies the next extension: the due date moves
// out, the extension counter increments, and the outstanding balance is
// left untouched.
func (s *Service) ApplyExtension(ctx context.Context, applicationID uuid.UUID, now time.Time) (*terms.ExtensionQuote, error) {
	app, err := s.loans.FindByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	quote, err := s.engine.QuoteExtension(app, app.ExtensionCount+1, now)
	if err != nil {
		return nil, err
	}
	if err := s.loans.UpdateExtension(ctx, applicationID, quote.NewDueDate, app.ExtensionCount+1); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to apply extension")
	}

	s.invalidateDashboard(ctx, app.UserID)
	s.logger.Info("due date extended", map[string]interface{}{
		"application_id": applicationID.String(),
		"extension":      app.ExtensionCount + 1,
		"new_due_date":   quote.NewDueDate.Format(time.RFC3339),
	})
	return quote, nil
}

// Dashboard is the summary served to the home screen.
type Dashboard struct {
	UserID            uuid.UUID                `json:"user_id"`
	LoanLimit         decimal.Decimal          `json:"loan_limit"`
	EligibilityStatus domain.EligibilityStatus `json:"eligibility_status"`
	Hold              *domain.HoldInfo         `json:"hold,omitempty"`
	ActiveApplication *domain.LoanApplication  `json:"active_application,omitempty"`
}

// GetDashboard assembles the summary through the injected cache. Mutations
// elsewhere (submission, graduation, hold changes) invalidate the entry.
func (s *Service) GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	key := cache.DashboardKey(userID)
	if s.cache != nil {
		var cached Dashboard
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if err != cache.ErrCacheMiss {
			s.logger.Warn("dashboard cache read failed", map[string]interface{}{
				"user_id": userID.String(),
				"error":   err.Error(),
			})
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	active, err := s.Active(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load applications")
	}

	d := &Dashboard{
		UserID:            userID,
		LoanLimit:         user.LoanLimit,
		EligibilityStatus: user.EligibilityStatus,
		ActiveApplication: active,
	}
	if hold := s.eligibility.CheckCanApply(ctx, user, time.Now().UTC()); hold != nil {
		d.Hold = hold
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, d, s.cfg.DashboardCacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", map[string]interface{}{
				"user_id": userID.String(),
				"error":   err.Error(),
			})
		}
	}
	return d, nil
}

func (s *Service) invalidateDashboard(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.DashboardKey(userID)); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
	}
}
