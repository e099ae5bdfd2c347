package eligibility

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lend/internal/domain"
	"lend/pkg/cache"
	"lend/pkg/config"
	pkgerrors "lend/pkg/errors"
	"lend/pkg/logger"
)

// UserRepository is the persistence surface the eligibility service writes
// through. The navigation gate never uses it; all hold and limit mutations
// happen here.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateHold(ctx context.Context, id uuid.UUID, status domain.UserStatus, reason *string, until *time.Time, eligibility domain.EligibilityStatus) error
	UpdateLoanLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) error
	UpdateGraduation(ctx context.Context, id uuid.UUID, status domain.GraduationStatus, limit decimal.Decimal, graduatedAt *time.Time) error
}

type Service struct {
	users  UserRepository
	cache  cache.Cache
	cfg    config.LendingConfig
	tiers  []IncomeTier
	logger logger.Logger
}

func NewService(users UserRepository, c cache.Cache, cfg config.LendingConfig, log logger.Logger) *Service {
	return &Service{
		users:  users,
		cache:  c,
		cfg:    cfg,
		tiers:  DefaultIncomeTiers(),
		logger: log,
	}
}

// EvaluateProfile re-runs the eligibility rules for a user and persists the
// outcome. Re-evaluation is idempotent: an existing hold is only rewritten
// when the underlying facts produced a different verdict.
func (s *Service) EvaluateProfile(ctx context.Context, userID uuid.UUID) (*Decision, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status == domain.UserStatusDeleted {
		return nil, pkgerrors.ErrUserDeleted
	}

	now := time.Now().UTC()
	decision := Classify(Profile{
		Employment:       user.Employment,
		DateOfBirth:      user.DateOfBirth,
		MonthlyIncome:    user.MonthlyIncome,
		GraduationStatus: user.GraduationStatus,
		CurrentLimit:     user.LoanLimit,
	}, s.tiers, s.cfg, now)

	switch {
	case decision.Hold != nil:
		if s.holdUnchanged(user, decision.Hold) {
			return &decision, nil
		}
		reason := decision.Hold.Reason
		if err := s.users.UpdateHold(ctx, userID, domain.UserStatusOnHold, &reason, decision.Hold.HoldUntil, domain.EligibilityNotEligible); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to place hold")
		}
		s.logger.Warn("user placed on hold", map[string]interface{}{
			"user_id":   userID.String(),
			"hold_type": decision.Hold.HoldType,
			"reason":    reason,
		})

	case decision.Rejected:
		if err := s.users.UpdateHold(ctx, userID, user.Status, nil, nil, domain.EligibilityNotEligible); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to record rejection")
		}
		s.logger.Info("profile rejected by eligibility rules", map[string]interface{}{
			"user_id": userID.String(),
			"reason":  decision.Reason,
		})

	default:
		// Eligible: lift any lapsed hold and apply the tier limit.
		if err := s.users.UpdateHold(ctx, userID, domain.UserStatusActive, nil, nil, domain.EligibilityEligible); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to reinstate user")
		}
		if !decision.LoanLimit.Equal(user.LoanLimit) {
			if err := s.users.UpdateLoanLimit(ctx, userID, decision.LoanLimit); err != nil {
				return nil, pkgerrors.Wrap(err, "failed to update loan limit")
			}
		}
	}

	s.invalidateDashboard(ctx, userID)
	return &decision, nil
}

// holdUnchanged reports whether the persisted hold already carries the same
// semantics as the freshly computed one.
func (s *Service) holdUnchanged(user *domain.User, hold *domain.HoldInfo) bool {
	if user.Status != domain.UserStatusOnHold || user.HoldReason == nil {
		return false
	}
	if *user.HoldReason != hold.Reason {
		return false
	}
	if (user.HoldUntil == nil) != (hold.HoldUntil == nil) {
		return false
	}
	if user.HoldUntil != nil && !user.HoldUntil.Equal(*hold.HoldUntil) {
		return false
	}
	return true
}

// HoldStatus classifies a user's current hold as a structured verdict.
func (s *Service) HoldStatus(user *domain.User, now time.Time) domain.HoldInfo {
	return HoldStatus(user, now)
}

// CheckCanApply returns the hold blocking a new application, or nil when
// the user may apply. The cooling-period ceiling is checked independently
// of income tier.
func (s *Service) CheckCanApply(ctx context.Context, user *domain.User, now time.Time) *domain.HoldInfo {
	if hold := HoldStatus(user, now); hold.IsOnHold {
		return &hold
	}
	if hold := CoolingPeriod(user.LoanLimit, s.cfg); hold != nil {
		s.logger.Info("application blocked by cooling period", map[string]interface{}{
			"user_id":    user.ID.String(),
			"loan_limit": user.LoanLimit.String(),
		})
		return hold
	}
	return nil
}

// UpdateGraduationStatus applies the one-way student upsell: moving to
// graduated raises the loan limit from the student base to the graduate
// limit. Only student accounts qualify; the reverse transition is rejected.
func (s *Service) UpdateGraduationStatus(ctx context.Context, userID uuid.UUID, status domain.GraduationStatus, graduatedAt time.Time) (decimal.Decimal, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	if user.Employment != domain.EmploymentStudent {
		return decimal.Zero, pkgerrors.ErrGraduationNotStudent
	}
	if user.GraduationStatus == domain.GraduationGraduated && status == domain.GraduationNotGraduated {
		return decimal.Zero, pkgerrors.ErrGraduationDowngrade
	}
	if user.GraduationStatus == status {
		return user.LoanLimit, nil
	}

	newLimit := s.cfg.GraduateLimit
	date := graduatedAt.UTC()
	if err := s.users.UpdateGraduation(ctx, userID, status, newLimit, &date); err != nil {
		return decimal.Zero, pkgerrors.Wrap(err, "failed to update graduation status")
	}

	s.invalidateDashboard(ctx, userID)
	s.logger.Info("graduation upsell applied", map[string]interface{}{
		"user_id":   userID.String(),
		"new_limit": newLimit.String(),
	})
	return newLimit, nil
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
