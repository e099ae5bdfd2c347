// Package terms computes the financial figures of a loan: interest, fees,
// penalties, extension costs, and the disclosure values derived from them.
//
// The authoritative interest model is simple daily interest on principal.
// The amortized EMI formula in IllustrativeEMI exists only for display in
// the calculator UI and must never feed committed loan terms.
package terms

import (
	"math"

	"github.com/shopspring/decimal"

	"lend/pkg/config"
	"lend/pkg/errors"
	"lend/pkg/logger"
)

var (
	hundred = decimal.NewFromInt(100)

	// Penalty tiers on overdue principal, by days past due.
	// Day 1 is a one-time flat charge; later tiers accrue per day.
	penaltyFirstDayPercent = decimal.NewFromInt(5)                  // day 1, once
	penaltyEarlyPercent    = decimal.NewFromInt(1)                  // days 2-10, per day
	penaltyLatePercent     = decimal.RequireFromString("0.6")       // days 11-120, per day
	penaltyEarlyMaxDays    = 9                                      // days 2..10
	penaltyLateMaxDays     = 110                                    // days 11..120
)

// Quote is the result of pricing a loan at origination.
type Quote struct {
	Principal      decimal.Decimal `json:"principal"`
	Days           int             `json:"days"`
	Interest       decimal.Decimal `json:"interest"`
	ProcessingFee  decimal.Decimal `json:"processing_fee"`
	GSTOnFee       decimal.Decimal `json:"gst_on_fee"`
	TotalRepayable decimal.Decimal `json:"total_repayable"`
	EMI            decimal.Decimal `json:"emi"`
	APR            decimal.Decimal `json:"apr"`
}

// Engine derives loan figures from the configured lending policy.
type Engine struct {
	cfg    config.LendingConfig
	logger logger.Logger
}

func NewEngine(cfg config.LendingConfig, log logger.Logger) *Engine {
	return &Engine{cfg: cfg, logger: log}
}

// Interest returns simple daily interest: principal * dayRate% * days.
// No compounding.
func Interest(principal, dayRatePercent decimal.Decimal, days int) decimal.Decimal {
	return principal.Mul(dayRatePercent).Div(hundred).Mul(decimal.NewFromInt(int64(days)))
}

// Compute prices a loan. Invalid inputs are rejected, never clamped.
func (e *Engine) Compute(principal, dayRatePercent decimal.Decimal, days int, processingFeePercent decimal.Decimal, installments int) (*Quote, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, errors.ErrInvalidPrincipal
	}
	if dayRatePercent.LessThanOrEqual(decimal.Zero) {
		return nil, errors.ErrInvalidDayRate
	}
	if days <= 0 {
		return nil, errors.ErrInvalidTenure
	}
	if processingFeePercent.IsNegative() {
		return nil, errors.ErrInvalidProcessingFee
	}
	if installments < 1 {
		installments = 1
	}

	interest := Interest(principal, dayRatePercent, days)
	fee := principal.Mul(processingFeePercent).Div(hundred)
	gst := fee.Mul(e.cfg.GSTPercent).Div(hundred)
	total := principal.Add(interest).Add(fee).Add(gst)

	return &Quote{
		Principal:      principal,
		Days:           days,
		Interest:       interest,
		ProcessingFee:  fee,
		GSTOnFee:       gst,
		TotalRepayable: total,
		EMI:            total.Div(decimal.NewFromInt(int64(installments))).Round(2),
	}, nil
}

// Penalty returns the accumulated overdue charge on principal only,
// evaluated from the first day after the due date:
//
//	day 1          -> flat 5% of overdue principal, once
//	days 2-10      -> 1% of overdue principal per day
//	days 11-120    -> 0.6% of overdue principal per day
//	beyond day 120 -> no further accrual
//
// Interest never enters the calculation, and the result is always reported
// separately from interest.
func Penalty(overduePrincipal decimal.Decimal, overdueDays int) decimal.Decimal {
	if overdueDays <= 0 || overduePrincipal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	total := overduePrincipal.Mul(penaltyFirstDayPercent).Div(hundred)

	earlyDays := overdueDays - 1
	if earlyDays > penaltyEarlyMaxDays {
		earlyDays = penaltyEarlyMaxDays
	}
	if earlyDays > 0 {
		perDay := overduePrincipal.Mul(penaltyEarlyPercent).Div(hundred)
		total = total.Add(perDay.Mul(decimal.NewFromInt(int64(earlyDays))))
	}

	lateDays := overdueDays - 1 - penaltyEarlyMaxDays
	if lateDays > penaltyLateMaxDays {
		lateDays = penaltyLateMaxDays
	}
	if lateDays > 0 {
		perDay := overduePrincipal.Mul(penaltyLatePercent).Div(hundred)
		total = total.Add(perDay.Mul(decimal.NewFromInt(int64(lateDays))))
	}

	return total
}

// TenureDays returns the loan tenure in days. A single-payment loan runs up
// to BaseTenureDays (165, covering four 30-day extensions); each additional
// installment adds InstallmentStepDays.
func (e *Engine) TenureDays(installments int) int {
	if installments <= 1 {
		return e.cfg.BaseTenureDays
	}
	return e.cfg.BaseTenureDays + (installments-1)*e.cfg.InstallmentStepDays
}

// APR returns the authoritative backend-calculated APR. When the backend
// figure is absent the engine reports zero and logs a warning; it never
// fabricates a rate.
func (e *Engine) APR(backendAPR *decimal.Decimal) decimal.Decimal {
	if backendAPR == nil {
		e.logger.Warn("backend APR missing, reporting zero sentinel", nil)
		return decimal.Zero
	}
	return *backendAPR
}

// IllustrativeEMI computes the standard amortized monthly installment for
// the calculator screen. Display-only: committed loan terms always come
// from the simple daily-interest model in Compute.
func IllustrativeEMI(principal decimal.Decimal, annualRatePercent decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	p, _ := principal.Float64()
	annual, _ := annualRatePercent.Float64()
	r := annual / 12 / 100
	if r == 0 {
		return principal.Div(decimal.NewFromInt(int64(months))).Round(2)
	}

	factor := math.Pow(1+r, float64(months))
	emi := p * r * factor / (factor - 1)
	return decimal.NewFromFloat(emi).Round(2)
}
