// Package eligibility decides who may borrow and how much: age and income
// gates, hold placement, credit-limit tiering, and the graduation upsell.
package eligibility

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"lend/internal/domain"
	"lend/pkg/config"
)

// IncomeTier maps a monthly-income bracket to a loan limit. A tier with a
// zero limit or the HoldPermanent flag places the user on a permanent hold.
type IncomeTier struct {
	Min           decimal.Decimal
	Max           decimal.Decimal // zero Max means open-ended
	LoanLimit     decimal.Decimal
	HoldPermanent bool
}

// DefaultIncomeTiers is the standard bracket table. It is deliberately a
// closed, enumerated table rather than a formula.
func DefaultIncomeTiers() []IncomeTier {
	return []IncomeTier{
		{Min: decimal.Zero, Max: decimal.NewFromInt(14999), LoanLimit: decimal.Zero, HoldPermanent: true},
		{Min: decimal.NewFromInt(15000), Max: decimal.NewFromInt(24999), LoanLimit: decimal.NewFromInt(10000)},
		{Min: decimal.NewFromInt(25000), Max: decimal.NewFromInt(39999), LoanLimit: decimal.NewFromInt(20000)},
		{Min: decimal.NewFromInt(40000), Max: decimal.NewFromInt(59999), LoanLimit: decimal.NewFromInt(30000)},
		{Min: decimal.NewFromInt(60000), LoanLimit: decimal.NewFromInt(40000)},
	}
}

// Profile carries the facts eligibility rules evaluate.
type Profile struct {
	Employment       domain.EmploymentType
	DateOfBirth      *time.Time
	MonthlyIncome    decimal.Decimal
	GraduationStatus domain.GraduationStatus
	CurrentLimit     decimal.Decimal
}

// Decision is the outcome of classifying a profile.
type Decision struct {
	Hold        *domain.HoldInfo
	Rejected    bool
	Reason      string
	LoanLimit   decimal.Decimal
	Eligibility domain.EligibilityStatus
}

// Classify runs the eligibility rules over a profile. Pure: all writes
// belong to the Service.
func Classify(p Profile, tiers []IncomeTier, cfg config.LendingConfig, now time.Time) Decision {
	if hold, rejected, reason := ageGate(p, cfg, now); hold != nil || rejected {
		return Decision{
			Hold:        hold,
			Rejected:    rejected,
			Reason:      reason,
			LoanLimit:   decimal.Zero,
			Eligibility: domain.EligibilityNotEligible,
		}
	}

	tier, found := lookupTier(tiers, p.MonthlyIncome)
	if !found {
		return Decision{
			Rejected:    true,
			Reason:      fmt.Sprintf("no lending tier covers a monthly income of %s", p.MonthlyIncome),
			LoanLimit:   decimal.Zero,
			Eligibility: domain.EligibilityNotEligible,
		}
	}

	if tier.HoldPermanent || tier.LoanLimit.IsZero() {
		reason := fmt.Sprintf("monthly income %s falls in the non-lendable bracket %s", p.MonthlyIncome, tier.bracket())
		return Decision{
			Hold: &domain.HoldInfo{
				IsOnHold: true,
				HoldType: domain.HoldTypePermanent,
				Reason:   reason,
			},
			Reason:      reason,
			LoanLimit:   decimal.Zero,
			Eligibility: domain.EligibilityNotEligible,
		}
	}

	limit := tier.LoanLimit
	if p.Employment == domain.EmploymentStudent {
		limit = cfg.StudentBaseLimit
		if p.GraduationStatus == domain.GraduationGraduated {
			limit = cfg.GraduateLimit
		}
	}

	return Decision{
		LoanLimit:   limit,
		Eligibility: domain.EligibilityEligible,
	}
}

// ageGate applies the employment-type-dependent age rules. Salaried
// applicants over the limit are held permanently, under-age students are
// held until their qualifying birthday, and other employment types outside
// the configured bounds are rejected outright, not held.
func ageGate(p Profile, cfg config.LendingConfig, now time.Time) (*domain.HoldInfo, bool, string) {
	if p.DateOfBirth == nil {
		return nil, false, ""
	}
	age := ageAt(*p.DateOfBirth, now)

	switch p.Employment {
	case domain.EmploymentSalaried:
		if age > cfg.SalariedMaxAge {
			reason := fmt.Sprintf("salaried applicants must be %d or younger", cfg.SalariedMaxAge)
			return &domain.HoldInfo{
				IsOnHold: true,
				HoldType: domain.HoldTypePermanent,
				Reason:   reason,
			}, false, reason
		}
	case domain.EmploymentStudent:
		if age < cfg.StudentMinAge {
			until := p.DateOfBirth.AddDate(cfg.StudentMinAge, 0, 0)
			reason := fmt.Sprintf("student applicants must be at least %d", cfg.StudentMinAge)
			return &domain.HoldInfo{
				IsOnHold:      true,
				HoldType:      domain.HoldTypeTemporary,
				Reason:        reason,
				HoldUntil:     &until,
				RemainingDays: remainingDays(until, now),
			}, false, reason
		}
	default:
		if age < cfg.GeneralMinAge || age > cfg.GeneralMaxAge {
			return nil, true, fmt.Sprintf("applicants must be between %d and %d", cfg.GeneralMinAge, cfg.GeneralMaxAge)
		}
	}
	return nil, false, ""
}

// HoldStatus classifies a user's persisted hold state. A hold without a
// reinstatement date is permanent; a future date is a temporary hold with
// the days remaining; a past date means the hold has lapsed.
func HoldStatus(user *domain.User, now time.Time) domain.HoldInfo {
	if user.Status != domain.UserStatusOnHold {
		return domain.HoldInfo{HoldType: domain.HoldTypeNone, CanReapply: true}
	}

	reason := ""
	if user.HoldReason != nil {
		reason = *user.HoldReason
	}

	if user.HoldUntil == nil {
		return domain.HoldInfo{
			IsOnHold: true,
			HoldType: domain.HoldTypePermanent,
			Reason:   reason,
		}
	}

	if user.HoldUntil.After(now) {
		return domain.HoldInfo{
			IsOnHold:      true,
			HoldType:      domain.HoldTypeTemporary,
			Reason:        reason,
			HoldUntil:     user.HoldUntil,
			RemainingDays: remainingDays(*user.HoldUntil, now),
		}
	}

	// Hold expired; the user can proceed once reinstated.
	return domain.HoldInfo{HoldType: domain.HoldTypeNone, CanReapply: true}
}

// CoolingPeriod reports the policy ceiling hold: any loan limit at or above
// the ceiling bars new applications regardless of income tier.
func CoolingPeriod(loanLimit decimal.Decimal, cfg config.LendingConfig) *domain.HoldInfo {
	if loanLimit.LessThan(cfg.LoanLimitCeiling) {
		return nil
	}
	return &domain.HoldInfo{
		IsOnHold:   true,
		HoldType:   domain.HoldTypePermanent,
		Reason:     fmt.Sprintf("loan limit %s has reached the %s ceiling, account is in a cooling period", loanLimit, cfg.LoanLimitCeiling),
		CanReapply: false,
	}
}

func lookupTier(tiers []IncomeTier, income decimal.Decimal) (IncomeTier, bool) {
	for _, t := range tiers {
		if income.LessThan(t.Min) {
			continue
		}
		if t.Max.IsZero() || income.LessThanOrEqual(t.Max) {
			return t, true
		}
	}
	return IncomeTier{}, false
}

func (t IncomeTier) bracket() string {
	if t.Max.IsZero() {
		return fmt.Sprintf("%s and above", t.Min)
	}
	return fmt.Sprintf("%s-%s", t.Min, t.Max)
}

func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		age--
	}
	return age
}

func remainingDays(until, now time.Time) int {
	return int(math.Ceil(until.Sub(now).Hours() / 24))
}
