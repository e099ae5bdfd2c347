// Package domain re-exports core domain types so internal code can import
// `lend/internal/domain` while using definitions from `lend/pkg/domain`.
package domain

import pkg "lend/pkg/domain"

// User represents a borrower account.
type User = pkg.User

// UserStatus represents the account state of a user.
type UserStatus = pkg.UserStatus

// EligibilityStatus represents the outcome of eligibility scoring.
type EligibilityStatus = pkg.EligibilityStatus

// EmploymentType classifies a user's employment.
type EmploymentType = pkg.EmploymentType

// GraduationStatus represents a student user's graduation state.
type GraduationStatus = pkg.GraduationStatus

// HoldType distinguishes permanent and temporary holds.
type HoldType = pkg.HoldType

// HoldInfo is the structured hold verdict.
type HoldInfo = pkg.HoldInfo

// LoanApplication represents one loan through its lifecycle.
type LoanApplication = pkg.LoanApplication

// ApplicationStatus represents loan lifecycle states.
type ApplicationStatus = pkg.ApplicationStatus

// ValidationAction is an admin-issued instruction on an application.
type ValidationAction = pkg.ValidationAction

// ActionType categorizes validation actions.
type ActionType = pkg.ActionType

// DocumentList is a JSON list of requested document names.
type DocumentList = pkg.DocumentList

// UploadedDocument is a borrower-supplied document.
type UploadedDocument = pkg.UploadedDocument

// UploadStatus represents document verification states.
type UploadStatus = pkg.UploadStatus

// KYCRecord tracks identity verification for an application.
type KYCRecord = pkg.KYCRecord

// KYCStatus represents KYC states.
type KYCStatus = pkg.KYCStatus

// PostDisbursalProgress tracks the selfie/agreement flow.
type PostDisbursalProgress = pkg.PostDisbursalProgress

// BankStatementRecord tracks bank-statement verification.
type BankStatementRecord = pkg.BankStatementRecord

// BankStatementStatus represents bank-statement states.
type BankStatementStatus = pkg.BankStatementStatus

// VerificationStatus represents bank-statement verification progress.
type VerificationStatus = pkg.VerificationStatus

// StepComplete is the checkpoint label for a finished application form.
const StepComplete = pkg.StepComplete

// Re-exported user statuses.
const (
	UserStatusActive  = pkg.UserStatusActive
	UserStatusOnHold  = pkg.UserStatusOnHold
	UserStatusDeleted = pkg.UserStatusDeleted
)

// Re-exported eligibility statuses.
const (
	EligibilityEligible    = pkg.EligibilityEligible
	EligibilityNotEligible = pkg.EligibilityNotEligible
)

// Re-exported employment types.
const (
	EmploymentSalaried     = pkg.EmploymentSalaried
	EmploymentStudent      = pkg.EmploymentStudent
	EmploymentSelfEmployed = pkg.EmploymentSelfEmployed
	EmploymentOther        = pkg.EmploymentOther
)

// Re-exported graduation statuses.
const (
	GraduationNotGraduated = pkg.GraduationNotGraduated
	GraduationGraduated    = pkg.GraduationGraduated
)

// Re-exported hold types.
const (
	HoldTypeNone      = pkg.HoldTypeNone
	HoldTypePermanent = pkg.HoldTypePermanent
	HoldTypeTemporary = pkg.HoldTypeTemporary
)

// Re-exported application statuses.
const (
	StatusSubmitted              = pkg.StatusSubmitted
	StatusUnderReview            = pkg.StatusUnderReview
	StatusQAVerification         = pkg.StatusQAVerification
	StatusFollowUp               = pkg.StatusFollowUp
	StatusBankDetailsProvided    = pkg.StatusBankDetailsProvided
	StatusReadyForDisbursement   = pkg.StatusReadyForDisbursement
	StatusReadyToRepeatDisbursal = pkg.StatusReadyToRepeatDisbursal
	StatusDisbursal              = pkg.StatusDisbursal
	StatusRepeatDisbursal        = pkg.StatusRepeatDisbursal
	StatusApproved               = pkg.StatusApproved
	StatusDisbursed              = pkg.StatusDisbursed
	StatusCleared                = pkg.StatusCleared
	StatusCancelled              = pkg.StatusCancelled
	StatusRejected               = pkg.StatusRejected
)

// Re-exported validation action types.
const (
	ActionNeedDocument = pkg.ActionNeedDocument
)

// Re-exported upload statuses.
const (
	UploadStatusPending  = pkg.UploadStatusPending
	UploadStatusVerified = pkg.UploadStatusVerified
	UploadStatusRejected = pkg.UploadStatusRejected
	UploadStatusOther    = pkg.UploadStatusOther
)

// Re-exported KYC statuses.
const (
	KYCStatusPending  = pkg.KYCStatusPending
	KYCStatusVerified = pkg.KYCStatusVerified
	KYCStatusRejected = pkg.KYCStatusRejected
)

// Re-exported bank-statement statuses.
const (
	BankStatementPending  = pkg.BankStatementPending
	BankStatementVerified = pkg.BankStatementVerified
	BankStatementRejected = pkg.BankStatementRejected
)

// Re-exported verification statuses.
const (
	VerificationNotStarted = pkg.VerificationNotStarted
	VerificationInProgress = pkg.VerificationInProgress
	VerificationDone       = pkg.VerificationDone
)
