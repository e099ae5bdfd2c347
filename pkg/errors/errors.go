// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserDeleted         = errors.New("user account deleted")
	ErrApplicationNotFound = errors.New("loan application not found")
	ErrDuplicateRequest    = errors.New("duplicate request")

	// Application state errors
	ErrActiveApplicationExists = errors.New("an active loan application already exists")
	ErrUserOnHold              = errors.New("user account is on hold")
	ErrCoolingPeriod           = errors.New("loan limit ceiling reached, account in cooling period")
	ErrLimitExceeded           = errors.New("requested principal exceeds loan limit")
	ErrNotEligible             = errors.New("user is not eligible for a loan")

	// Eligibility errors
	ErrGraduationDowngrade  = errors.New("graduation status cannot be downgraded")
	ErrGraduationNotStudent = errors.New("graduation upsell applies to student accounts only")
	ErrIncomeTierNotFound   = errors.New("no income tier matches the given income")

	// Financial terms errors
	ErrInvalidPrincipal      = errors.New("principal must be positive")
	ErrInvalidDayRate        = errors.New("day rate must be positive")
	ErrInvalidTenure         = errors.New("tenure days must be positive")
	ErrInvalidProcessingFee  = errors.New("processing fee percent must not be negative")
	ErrInvalidExtensionIndex = errors.New("extension index must be between 1 and 4")
	ErrExtensionLimitReached = errors.New("maximum number of extensions reached")
	ErrLoanNotDisbursed      = errors.New("loan has not been disbursed")

	// Verification record errors
	ErrKYCRecordNotFound        = errors.New("kyc record not found")
	ErrBankStatementNotFound    = errors.New("bank statement record not found")
	ErrProgressNotFound         = errors.New("post-disbursal progress not found")
	ErrValidationActionNotFound = errors.New("validation action not found")
	ErrDocumentNotFound         = errors.New("uploaded document not found")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
