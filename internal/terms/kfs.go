package terms

import (
	"time"

	"github.com/shopspring/decimal"

	"lend/internal/domain"
)

// KFSData is the Key Facts Statement input sheet handed to the legal
// document composer. Every monetary figure comes from the engine; the
// composer only renders.
type KFSData struct {
	LoanAmount          decimal.Decimal `json:"loan_amount"`
	NetDisbursedAmount  decimal.Decimal `json:"net_disbursed_amount"`
	DayRatePercent      decimal.Decimal `json:"day_rate_percent"`
	AnnualizedRate      decimal.Decimal `json:"annualized_rate_percent"`
	ProcessingFee       decimal.Decimal `json:"processing_fee"`
	GSTOnFee            decimal.Decimal `json:"gst_on_fee"`
	TotalInterest       decimal.Decimal `json:"total_interest"`
	TotalRepayable      decimal.Decimal `json:"total_repayable"`
	APR                 decimal.Decimal `json:"apr"`
	TenureDays          int             `json:"tenure_days"`
	InstallmentCount    int             `json:"installment_count"`
	InstallmentAmount   decimal.Decimal `json:"installment_amount"`
	DueDate             *time.Time      `json:"due_date,omitempty"`
	MaxExtensions       int             `json:"max_extensions"`
	ExtensionLengthDays int             `json:"extension_length_days"`
}

// BuildKFS assembles the disclosure sheet for a loan. APR falls back to the
// zero sentinel when the backend figure is absent.
func (e *Engine) BuildKFS(loan *domain.LoanApplication) (*KFSData, error) {
	installments := loan.InstallmentCount
	if installments < 1 {
		installments = 1
	}
	days := e.TenureDays(installments)

	quote, err := e.Compute(loan.Principal, e.cfg.DayRatePercent, days, e.cfg.ProcessingFeePercent, installments)
	if err != nil {
		return nil, err
	}

	return &KFSData{
		LoanAmount:          loan.Principal,
		NetDisbursedAmount:  loan.Principal.Sub(quote.ProcessingFee).Sub(quote.GSTOnFee),
		DayRatePercent:      e.cfg.DayRatePercent,
		AnnualizedRate:      e.cfg.DayRatePercent.Mul(decimal.NewFromInt(365)),
		ProcessingFee:       quote.ProcessingFee,
		GSTOnFee:            quote.GSTOnFee,
		TotalInterest:       quote.Interest,
		TotalRepayable:      quote.TotalRepayable,
		APR:                 e.APR(loan.BackendAPR),
		TenureDays:          days,
		InstallmentCount:    installments,
		InstallmentAmount:   quote.EMI,
		DueDate:             loan.DueDate,
		MaxExtensions:       e.cfg.MaxExtensions,
		ExtensionLengthDays: e.cfg.ExtensionDays,
	}, nil
}
