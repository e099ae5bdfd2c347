// Package gate decides, per page load, whether a borrower may stay on the
// requested route or must be redirected into an unfinished step of the loan
// journey. The decision is a priority-ordered rule list evaluated
// top-to-bottom; the first matching rule wins. States overlap in the
// underlying data, so the ordering is itself the contract.
package gate

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"lend/internal/documents"
	"lend/internal/domain"
	pkgerrors "lend/pkg/errors"
)

// Step names the journey step a matched rule redirects to.
type Step string

const (
	StepNone             Step = "none"
	StepKYC              Step = "kyc"
	StepPostDisbursal    Step = "post_disbursal"
	StepBankStatement    Step = "bank_statement"
	StepDisbursalWaiting Step = "disbursal_waiting"
	StepUnderReview      Step = "under_review"
	StepUploadDocuments  Step = "upload_documents"
)

// Routes the gate redirects to, and the one route exempt from the
// disbursal-waiting rule.
const (
	RouteDashboard        = "/dashboard"
	RouteKYC              = "/kyc"
	RoutePostDisbursal    = "/post-disbursal"
	RouteBankStatement    = "/bank-statement/upload"
	RouteDisbursalWaiting = "/disbursal/waiting"
	RouteUnderReview      = "/application/under-review"
	RouteUploadDocuments  = "/documents/upload"
)

// RouteFor maps a step to its redirect route.
func RouteFor(step Step) string {
	switch step {
	case StepKYC:
		return RouteKYC
	case StepPostDisbursal:
		return RoutePostDisbursal
	case StepBankStatement:
		return RouteBankStatement
	case StepDisbursalWaiting:
		return RouteDisbursalWaiting
	case StepUnderReview:
		return RouteUnderReview
	case StepUploadDocuments:
		return RouteUploadDocuments
	}
	return ""
}

// failurePolicy names what a rule does when a collaborator fetch fails.
// Every rule in the chain is failOpen: the error is logged and the rule is
// treated as non-matching, so a flaky dependency cannot strand a user.
type failurePolicy string

const failOpen failurePolicy = "fail_open"

// ApplicationSource lists a user's loan applications, most recent first.
type ApplicationSource interface {
	GetLoanApplications(ctx context.Context, userID uuid.UUID) ([]*domain.LoanApplication, error)
}

// ValidationSource returns admin validation actions, most recent first.
type ValidationSource interface {
	GetValidationHistory(ctx context.Context, applicationID uuid.UUID) ([]*domain.ValidationAction, error)
}

// DocumentSource returns the documents uploaded against an application.
type DocumentSource interface {
	GetUploadedDocuments(ctx context.Context, applicationID uuid.UUID) ([]*domain.UploadedDocument, error)
}

// KYCSource returns the KYC record for an application.
type KYCSource interface {
	GetKYCStatus(ctx context.Context, applicationID uuid.UUID) (*domain.KYCRecord, error)
}

// ProgressSource returns the post-disbursal (selfie/agreement) progress.
type ProgressSource interface {
	GetPostDisbursalProgress(ctx context.Context, applicationID uuid.UUID) (*domain.PostDisbursalProgress, error)
}

// BankStatementSource returns the user-level bank statement record.
type BankStatementSource interface {
	GetBankStatementStatus(ctx context.Context, userID uuid.UUID) (*domain.BankStatementRecord, error)
}

// Collaborators bundles the read-only sources the gate consults. All reads
// bypass caches: the data is safety-critical and must reflect admin actions
// committed moments before the page load.
type Collaborators struct {
	Applications   ApplicationSource
	Validations    ValidationSource
	Documents      DocumentSource
	KYC            KYCSource
	Progress       ProgressSource
	BankStatements BankStatementSource
}

// snapshot lazily fetches and memoizes collaborator state for one
// evaluation. Each fetch happens at most once per page load; rules read
// through accessors so a fetch error surfaces to exactly the rules that
// need that data.
type snapshot struct {
	ctx    context.Context
	userID uuid.UUID
	src    Collaborators

	active      *domain.LoanApplication
	activeDone  bool
	activeErr   error
	kyc         *domain.KYCRecord
	kycDone     bool
	kycErr      error
	progress    *domain.PostDisbursalProgress
	progDone    bool
	progErr     error
	bank        *domain.BankStatementRecord
	bankDone    bool
	bankErr     error
	pendingDocs []string
	docsDone    bool
	docsErr     error
}

// activeApplication returns the user's single non-terminal application, or
// nil when every application is cleared or cancelled.
func (s *snapshot) activeApplication() (*domain.LoanApplication, error) {
	if s.activeDone {
		return s.active, s.activeErr
	}
	s.activeDone = true

	apps, err := s.src.Applications.GetLoanApplications(s.ctx, s.userID)
	if err != nil {
		s.activeErr = err
		return nil, err
	}
	for _, app := range apps {
		if !app.Status.IsTerminal() {
			s.active = app
			break
		}
	}
	return s.active, nil
}

// missingRecord maps the not-found sentinels to plain absence: a user
// without a KYC or bank record simply has no matching rule, which is not a
// collaborator failure.
func missingRecord(err error) bool {
	return errors.Is(err, pkgerrors.ErrKYCRecordNotFound) ||
		errors.Is(err, pkgerrors.ErrProgressNotFound) ||
		errors.Is(err, pkgerrors.ErrBankStatementNotFound)
}

func (s *snapshot) kycRecord(applicationID uuid.UUID) (*domain.KYCRecord, error) {
	if s.kycDone {
		return s.kyc, s.kycErr
	}
	s.kycDone = true
	s.kyc, s.kycErr = s.src.KYC.GetKYCStatus(s.ctx, applicationID)
	if missingRecord(s.kycErr) {
		s.kyc, s.kycErr = nil, nil
	}
	return s.kyc, s.kycErr
}

func (s *snapshot) postDisbursalProgress(applicationID uuid.UUID) (*domain.PostDisbursalProgress, error) {
	if s.progDone {
		return s.progress, s.progErr
	}
	s.progDone = true
	s.progress, s.progErr = s.src.Progress.GetPostDisbursalProgress(s.ctx, applicationID)
	if missingRecord(s.progErr) {
		s.progress, s.progErr = nil, nil
	}
	return s.progress, s.progErr
}

func (s *snapshot) bankStatement() (*domain.BankStatementRecord, error) {
	if s.bankDone {
		return s.bank, s.bankErr
	}
	s.bankDone = true
	s.bank, s.bankErr = s.src.BankStatements.GetBankStatementStatus(s.ctx, s.userID)
	if missingRecord(s.bankErr) {
		s.bank, s.bankErr = nil, nil
	}
	return s.bank, s.bankErr
}

// pendingDocuments resolves the latest need_document request against the
// uploads on file.
func (s *snapshot) pendingDocuments(applicationID uuid.UUID) ([]string, error) {
	if s.docsDone {
		return s.pendingDocs, s.docsErr
	}
	s.docsDone = true

	actions, err := s.src.Validations.GetValidationHistory(s.ctx, applicationID)
	if err != nil {
		s.docsErr = err
		return nil, err
	}
	requested := documents.LatestRequest(actions)
	if len(requested) == 0 {
		return nil, nil
	}
	uploads, err := s.src.Documents.GetUploadedDocuments(s.ctx, applicationID)
	if err != nil {
		s.docsErr = err
		return nil, err
	}
	s.pendingDocs = documents.Pending(requested, uploads)
	return s.pendingDocs, nil
}

// rule is one entry in the decision list. eval reports whether the rule
// matches for the given snapshot and route; an error invokes the rule's
// failure policy.
type rule struct {
	name   string
	target Step
	policy failurePolicy
	eval   func(s *snapshot, route string) (bool, error)
}

// rules is the decision list, in evaluation order. The pending-documents
// rule deliberately precedes the under-review rule: an admin asking for
// documents outranks the generic review holding page even though both
// statuses hold simultaneously.
func rules() []rule {
	return []rule{
		{
			name:   "rekyc_required",
			target: StepKYC,
			policy: failOpen,
			eval: func(s *snapshot, _ string) (bool, error) {
				app, err := s.activeApplication()
				if err != nil || app == nil {
					return false, err
				}
				rec, err := s.kycRecord(app.ID)
				if err != nil || rec == nil {
					return false, err
				}
				return rec.ReKYCRequired, nil
			},
		},
		{
			name:   "selfie_reset",
			target: StepPostDisbursal,
			policy: failOpen,
			eval: func(s *snapshot, _ string) (bool, error) {
				app, err := s.activeApplication()
				if err != nil || app == nil {
					return false, err
				}
				switch app.Status {
				case domain.StatusReadyForDisbursement, domain.StatusDisbursal, domain.StatusRepeatDisbursal:
				default:
					return false, nil
				}
				prog, err := s.postDisbursalProgress(app.ID)
				if err != nil || prog == nil {
					return false, err
				}
				return prog.SelfieResetPending(), nil
			},
		},
		{
			name:   "bank_statement_reset",
			target: StepBankStatement,
			policy: failOpen,
			eval: func(s *snapshot, _ string) (bool, error) {
				rec, err := s.bankStatement()
				if err != nil || rec == nil {
					return false, err
				}
				return rec.ResetPending(), nil
			},
		},
		{
			name:   "disbursal_waiting",
			target: StepDisbursalWaiting,
			policy: failOpen,
			eval: func(s *snapshot, route string) (bool, error) {
				// The dashboard is exempt so users can review the offer
				// before opting in.
				if route == RouteDashboard {
					return false, nil
				}
				app, err := s.activeApplication()
				if err != nil || app == nil {
					return false, err
				}
				return app.Status == domain.StatusReadyForDisbursement ||
					app.Status == domain.StatusReadyToRepeatDisbursal, nil
			},
		},
		{
			name:   "agreement_unsigned",
			target: StepPostDisbursal,
			policy: failOpen,
			eval: func(s *snapshot, _ string) (bool, error) {
				app, err := s.activeApplication()
				if err != nil || app == nil {
					return false, err
				}
				if app.Status != domain.StatusDisbursal && app.Status != domain.StatusRepeatDisbursal {
					return false, nil
				}
				prog, err := s.postDisbursalProgress(app.ID)
				if err != nil || prog == nil {
					return false, err
				}
				return !prog.AgreementDone(), nil
			},
		},
		{
			name:   "documents_pending",
			target: StepUploadDocuments,
			policy: failOpen,
			eval: func(s *snapshot, _ string) (bool, error) {
				app, err := s.activeApplication()
				if err != nil || app == nil {
					return false, err
				}
				pending, err := s.pendingDocuments(app.ID)
				if err != nil {
					return false, err
				}
				return len(pending) > 0, nil
			},
		},
		{
			name:   "under_review",
			target: StepUnderReview,
			policy: failOpen,
			eval: func(s *snapshot, _ string) (bool, error) {
				app, err := s.activeApplication()
				if err != nil || app == nil {
					return false, err
				}
				switch app.Status {
				case domain.StatusUnderReview, domain.StatusSubmitted, domain.StatusQAVerification, domain.StatusFollowUp:
				default:
					return false, nil
				}
				return app.StepIsComplete() || app.Status == domain.StatusQAVerification, nil
			},
		},
	}
}
