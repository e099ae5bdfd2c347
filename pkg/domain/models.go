package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a borrower account
type User struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	Email             string            `json:"email" db:"email"`
	Phone             string            `json:"phone" db:"phone"`
	FirstName         string            `json:"first_name" db:"first_name"`
	LastName          string            `json:"last_name" db:"last_name"`
	Status            UserStatus        `json:"status" db:"status"`
	HoldReason        *string           `json:"hold_reason,omitempty" db:"hold_reason"`
	HoldUntil         *time.Time        `json:"hold_until,omitempty" db:"hold_until"`
	LoanLimit         decimal.Decimal   `json:"loan_limit" db:"loan_limit"`
	EligibilityStatus EligibilityStatus `json:"eligibility_status" db:"eligibility_status"`
	Employment        EmploymentType    `json:"employment" db:"employment"`
	MonthlyIncome     decimal.Decimal   `json:"monthly_income" db:"monthly_income"`
	GraduationStatus  GraduationStatus  `json:"graduation_status" db:"graduation_status"`
	GraduationDate    *time.Time        `json:"graduation_date,omitempty" db:"graduation_date"`
	DateOfBirth       *time.Time        `json:"date_of_birth,omitempty" db:"date_of_birth"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusOnHold  UserStatus = "on_hold"
	UserStatusDeleted UserStatus = "deleted"
)

type EligibilityStatus string

const (
	EligibilityEligible    EligibilityStatus = "eligible"
	EligibilityNotEligible EligibilityStatus = "not_eligible"
)

type EmploymentType string

const (
	EmploymentSalaried     EmploymentType = "salaried"
	EmploymentStudent      EmploymentType = "student"
	EmploymentSelfEmployed EmploymentType = "self_employed"
	EmploymentOther        EmploymentType = "other"
)

type GraduationStatus string

const (
	GraduationNotGraduated GraduationStatus = "not_graduated"
	GraduationGraduated    GraduationStatus = "graduated"
)

// HoldType distinguishes permanent holds from those that auto-expire.
type HoldType string

const (
	HoldTypeNone      HoldType = "none"
	HoldTypePermanent HoldType = "permanent"
	HoldTypeTemporary HoldType = "temporary"
)

// HoldInfo is the structured hold verdict surfaced to callers and the UI.
// A hold with no reinstatement date is always permanent.
type HoldInfo struct {
	IsOnHold      bool       `json:"is_on_hold"`
	HoldType      HoldType   `json:"hold_type"`
	Reason        string     `json:"reason,omitempty"`
	HoldUntil     *time.Time `json:"hold_until,omitempty"`
	RemainingDays int        `json:"remaining_days,omitempty"`
	CanReapply    bool       `json:"can_reapply"`
}

// LoanApplication represents one loan through its full lifecycle
type LoanApplication struct {
	ID                 uuid.UUID         `json:"id" db:"id"`
	UserID             uuid.UUID         `json:"user_id" db:"user_id"`
	Status             ApplicationStatus `json:"status" db:"status"`
	CurrentStep        *string           `json:"current_step,omitempty" db:"current_step"`
	Principal          decimal.Decimal   `json:"principal" db:"principal"`
	OutstandingBalance decimal.Decimal   `json:"outstanding_balance" db:"outstanding_balance"`
	Purpose            string            `json:"purpose" db:"purpose"`
	InstallmentCount   int               `json:"installment_count" db:"installment_count"`
	ExtensionCount     int               `json:"extension_count" db:"extension_count"`
	DisbursedAt        *time.Time        `json:"disbursed_at,omitempty" db:"disbursed_at"`
	DueDate            *time.Time        `json:"due_date,omitempty" db:"due_date"`
	BackendAPR         *decimal.Decimal  `json:"backend_apr,omitempty" db:"backend_apr"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" db:"updated_at"`
}

type ApplicationStatus string

const (
	StatusSubmitted              ApplicationStatus = "submitted"
	StatusUnderReview            ApplicationStatus = "under_review"
	StatusQAVerification         ApplicationStatus = "qa_verification"
	StatusFollowUp               ApplicationStatus = "follow_up"
	StatusBankDetailsProvided    ApplicationStatus = "bank_details_provided"
	StatusReadyForDisbursement   ApplicationStatus = "ready_for_disbursement"
	StatusReadyToRepeatDisbursal ApplicationStatus = "ready_to_repeat_disbursal"
	StatusDisbursal              ApplicationStatus = "disbursal"
	StatusRepeatDisbursal        ApplicationStatus = "repeat_disbursal"
	StatusApproved               ApplicationStatus = "approved"
	StatusDisbursed              ApplicationStatus = "disbursed"
	StatusCleared                ApplicationStatus = "cleared"
	StatusCancelled              ApplicationStatus = "cancelled"
	StatusRejected               ApplicationStatus = "rejected"
)

// StepComplete is the checkpoint label marking the multi-step form as finished.
const StepComplete = "complete"

// IsTerminal reports whether the application no longer gates the user.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusCleared || s == StatusCancelled
}

// IsActive reports whether this application blocks a new one.
func (a *LoanApplication) IsActive() bool {
	return !a.Status.IsTerminal()
}

// StepIsComplete reports whether the form checkpoint reached "complete".
func (a *LoanApplication) StepIsComplete() bool {
	return a.CurrentStep != nil && *a.CurrentStep == StepComplete
}

// ValidationAction is an admin-issued instruction attached to an application.
// Actions are immutable; a newer action of the same type supersedes older ones.
type ValidationAction struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	ApplicationID uuid.UUID    `json:"application_id" db:"application_id"`
	ActionType    ActionType   `json:"action_type" db:"action_type"`
	Payload       DocumentList `json:"payload" db:"payload"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

type ActionType string

const (
	ActionNeedDocument ActionType = "need_document"
)

// DocumentList is a JSON-encoded list of requested document names.
type DocumentList []string

func (d DocumentList) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *DocumentList) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, d)
}

// UploadedDocument is a borrower-supplied document for an application.
// Matching to a ValidationAction request is by normalized name, not foreign key.
type UploadedDocument struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	ApplicationID uuid.UUID    `json:"application_id" db:"application_id"`
	DocumentName  string       `json:"document_name" db:"document_name"`
	UploadStatus  UploadStatus `json:"upload_status" db:"upload_status"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

type UploadStatus string

const (
	UploadStatusPending  UploadStatus = "pending"
	UploadStatusVerified UploadStatus = "verified"
	UploadStatusRejected UploadStatus = "rejected"
	UploadStatusOther    UploadStatus = "other"
)

// KYCRecord tracks identity verification for an application.
type KYCRecord struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ApplicationID uuid.UUID  `json:"application_id" db:"application_id"`
	Status        KYCStatus  `json:"status" db:"status"`
	ReKYCRequired bool       `json:"rekyc_required" db:"rekyc_required"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusVerified KYCStatus = "verified"
	KYCStatusRejected KYCStatus = "rejected"
)

// PostDisbursalProgress tracks the selfie/agreement flow after approval.
type PostDisbursalProgress struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ApplicationID   uuid.UUID `json:"application_id" db:"application_id"`
	CurrentStep     int       `json:"current_step" db:"current_step"`
	SelfieCaptured  bool      `json:"selfie_captured" db:"selfie_captured"`
	SelfieVerified  bool      `json:"selfie_verified" db:"selfie_verified"`
	AgreementSigned bool      `json:"agreement_signed" db:"agreement_signed"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// AgreementDone reports whether the signing flow finished (step 7, or step 6
// with the agreement already signed).
func (p *PostDisbursalProgress) AgreementDone() bool {
	if p.CurrentStep >= 7 {
		return true
	}
	return p.CurrentStep >= 6 && p.AgreementSigned
}

// SelfieResetPending reports the admin-triggered re-capture signature:
// captured but no longer verified.
func (p *PostDisbursalProgress) SelfieResetPending() bool {
	return p.SelfieCaptured && !p.SelfieVerified
}

// BankStatementRecord tracks bank-statement verification per user and application.
type BankStatementRecord struct {
	ID                 uuid.UUID           `json:"id" db:"id"`
	UserID             uuid.UUID           `json:"user_id" db:"user_id"`
	ApplicationID      uuid.UUID           `json:"application_id" db:"application_id"`
	Status             BankStatementStatus `json:"status" db:"status"`
	VerificationStatus VerificationStatus  `json:"verification_status" db:"verification_status"`
	UserStatus         *string             `json:"user_status,omitempty" db:"user_status"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" db:"updated_at"`
}

type BankStatementStatus string

const (
	BankStatementPending  BankStatementStatus = "pending"
	BankStatementVerified BankStatementStatus = "verified"
	BankStatementRejected BankStatementStatus = "rejected"
)

type VerificationStatus string

const (
	VerificationNotStarted VerificationStatus = "not_started"
	VerificationInProgress VerificationStatus = "in_progress"
	VerificationDone       VerificationStatus = "done"
)

// ResetPending reports the admin-triggered re-upload signature: a pending
// record whose verification never started and which carries no user status.
func (b *BankStatementRecord) ResetPending() bool {
	return b.Status == BankStatementPending &&
		b.VerificationStatus == VerificationNotStarted &&
		b.UserStatus == nil
}
