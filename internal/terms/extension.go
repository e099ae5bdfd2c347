package terms

import (
	"time"

	"github.com/shopspring/decimal"

	"lend/internal/domain"
	"lend/pkg/errors"
)

// ExtensionQuote is the separately payable cost of deferring a due date.
// The loan's outstanding balance is never touched by an extension.
type ExtensionQuote struct {
	ExtensionIndex     int             `json:"extension_index"`
	Fee                decimal.Decimal `json:"fee"`
	GSTOnFee           decimal.Decimal `json:"gst_on_fee"`
	InterestTillToday  decimal.Decimal `json:"interest_till_today"`
	Penalty            decimal.Decimal `json:"penalty"`
	GSTOnPenalty       decimal.Decimal `json:"gst_on_penalty"`
	TotalPayment       decimal.Decimal `json:"total_payment"`
	NewDueDate         time.Time       `json:"new_due_date"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

// QuoteExtension prices the nth deferral of a disbursed loan as of the given
// time. The fee base is the loan's processing fee; each extension charges
// the configured percentage of that base, scaled by the extension index,
// plus GST, plus interest accrued to date and any outstanding penalty.
func (e *Engine) QuoteExtension(loan *domain.LoanApplication, extensionIndex int, asOf time.Time) (*ExtensionQuote, error) {
	if extensionIndex < 1 || extensionIndex > e.cfg.MaxExtensions {
		return nil, errors.ErrInvalidExtensionIndex
	}
	if loan.ExtensionCount >= e.cfg.MaxExtensions {
		return nil, errors.ErrExtensionLimitReached
	}
	if loan.DisbursedAt == nil || loan.DueDate == nil {
		return nil, errors.ErrLoanNotDisbursed
	}
	if loan.Principal.LessThanOrEqual(decimal.Zero) {
		return nil, errors.ErrInvalidPrincipal
	}

	feeBase := loan.Principal.Mul(e.cfg.ProcessingFeePercent).Div(hundred)
	fee := feeBase.Mul(e.cfg.ExtensionFeePercent).Div(hundred).Mul(decimal.NewFromInt(int64(extensionIndex)))
	gstOnFee := fee.Mul(e.cfg.GSTPercent).Div(hundred)

	elapsed := daysBetween(*loan.DisbursedAt, asOf)
	interest := Interest(loan.Principal, e.cfg.DayRatePercent, elapsed)

	overdueDays := daysBetween(*loan.DueDate, asOf)
	penalty := Penalty(loan.Principal, overdueDays)
	gstOnPenalty := penalty.Mul(e.cfg.GSTPercent).Div(hundred)

	total := fee.Add(gstOnFee).Add(interest).Add(penalty).Add(gstOnPenalty)

	return &ExtensionQuote{
		ExtensionIndex:     extensionIndex,
		Fee:                fee,
		GSTOnFee:           gstOnFee,
		InterestTillToday:  interest,
		Penalty:            penalty,
		GSTOnPenalty:       gstOnPenalty,
		TotalPayment:       total,
		NewDueDate:         loan.DueDate.AddDate(0, 0, e.cfg.ExtensionDays),
		OutstandingBalance: loan.OutstandingBalance,
	}, nil
}

// daysBetween counts whole days from a to b, never negative.
func daysBetween(a, b time.Time) int {
	d := int(b.Sub(a).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
