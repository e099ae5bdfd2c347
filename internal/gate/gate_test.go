package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lend/internal/domain"
	"lend/pkg/cache"
	"lend/pkg/config"
	"lend/pkg/logger"
)

// stubSources is a fixture implementing every collaborator interface with
// canned state and per-source error injection.
type stubSources struct {
	apps    []*domain.LoanApplication
	appsErr error

	actions    []*domain.ValidationAction
	actionsErr error

	uploads    []*domain.UploadedDocument
	uploadsErr error

	kyc    *domain.KYCRecord
	kycErr error

	progress    *domain.PostDisbursalProgress
	progressErr error

	bank    *domain.BankStatementRecord
	bankErr error

	appCalls int
}

func (s *stubSources) GetLoanApplications(ctx context.Context, userID uuid.UUID) ([]*domain.LoanApplication, error) {
	s.appCalls++
	return s.apps, s.appsErr
}

func (s *stubSources) GetValidationHistory(ctx context.Context, applicationID uuid.UUID) ([]*domain.ValidationAction, error) {
	return s.actions, s.actionsErr
}

func (s *stubSources) GetUploadedDocuments(ctx context.Context, applicationID uuid.UUID) ([]*domain.UploadedDocument, error) {
	return s.uploads, s.uploadsErr
}

func (s *stubSources) GetKYCStatus(ctx context.Context, applicationID uuid.UUID) (*domain.KYCRecord, error) {
	return s.kyc, s.kycErr
}

func (s *stubSources) GetPostDisbursalProgress(ctx context.Context, applicationID uuid.UUID) (*domain.PostDisbursalProgress, error) {
	return s.progress, s.progressErr
}

func (s *stubSources) GetBankStatementStatus(ctx context.Context, userID uuid.UUID) (*domain.BankStatementRecord, error) {
	return s.bank, s.bankErr
}

func (s *stubSources) collaborators() Collaborators {
	return Collaborators{
		Applications:   s,
		Validations:    s,
		Documents:      s,
		KYC:            s,
		Progress:       s,
		BankStatements: s,
	}
}

func newTestGate(src *stubSources, c cache.Cache) *Gate {
	cfg := config.LendingConfig{GateGuardTTL: time.Minute}
	return New(src.collaborators(), c, cfg, logger.NewNop())
}

func application(status domain.ApplicationStatus) *domain.LoanApplication {
	return &domain.LoanApplication{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: status,
	}
}

func TestDecideAllowsWithNoActiveApplication(t *testing.T) {
	src := &stubSources{
		apps: []*domain.LoanApplication{application(domain.StatusCleared), application(domain.StatusCancelled)},
	}
	g := newTestGate(src, nil)

	d := g.Decide(context.Background(), uuid.New(), RouteDashboard)
	assert.True(t, d.Allowed)
	assert.Equal(t, StepNone, d.Step)
}

func TestDecideReKYCOverridesUnderReview(t *testing.T) {
	// Both the ReKYC and under-review conditions hold; the ReKYC rule must
	// win because it runs first.
	step := domain.StepComplete
	app := application(domain.StatusUnderReview)
	app.CurrentStep = &step

	src := &stubSources{
		apps: []*domain.LoanApplication{app},
		kyc:  &domain.KYCRecord{ApplicationID: app.ID, ReKYCRequired: true},
	}
	g := newTestGate(src, nil)

	d := g.Decide(context.Background(), uuid.New(), RouteDashboard)
	require.False(t, d.Allowed)
	assert.Equal(t, StepKYC, d.Step)
	assert.Equal(t, RouteKYC, d.RedirectTo)
}

func TestDecideSelfieReset(t *testing.T) {
	app := application(domain.StatusDisbursal)
	src := &stubSources{
		apps:     []*domain.LoanApplication{app},
		kyc:      &domain.KYCRecord{ApplicationID: app.ID},
		progress: &domain.PostDisbursalProgress{ApplicationID: app.ID, CurrentStep: 7, SelfieCaptured: true, SelfieVerified: false},
	}
	g := newTestGate(src, nil)

	d := g.Decide(context.Background(), uuid.New(), RouteDashboard)
	require.False(t, d.Allowed)
	assert.Equal(t, StepPostDisbursal, d.Step)
}

func TestDecideBankStatementReset(t *testing.T) {
	app := application(domain.StatusDisbursal)
	src := &stubSources{
		apps: []*domain.LoanApplication{app},
		kyc:  &domain.KYCRecord{ApplicationID: app.ID},
		progress: &domain.PostDisbursalProgress{
			ApplicationID: app.ID, CurrentStep: 7, SelfieCaptured: true, SelfieVerified: true, AgreementSigned: true,
		},
		bank: &domain.BankStatementRecord{
			Status:             domain.BankStatementPending,
			VerificationStatus: domain.VerificationNotStarted,
		},
	}
	g := newTestGate(src, nil)

	d := g.Decide(context.Background(), uuid.New(), RouteDashboard)
	require.False(t, d.Allowed)
	assert.Equal(t, StepBankStatement, d.Step)
	assert.Equal(t, RouteBankStatement, d.RedirectTo)
}

func TestDecideDisbursalWaitingExemptsDashboard(t *testing.T) {
	app := application(domain.StatusReadyForDisbursement)
	src := &stubSources{
		apps: []*domain.LoanApplication{app},
		kyc:  &domain.KYCRecord{ApplicationID: app.ID},
	}
	g := newTestGate(src, nil)

	// Dashboard stays reachable so users can review the offer.
	d := g.Decide(context.Background(), uuid.New(), RouteDashboard)
	assert.True(t, d.Allowed)

	d = g.Decide(context.Background(), uuid.New(), "/profile")
	require.False(t, d.Allowed)
	assert.Equal(t, StepDisbursalWaiting, d.Step)
	assert.Equal(t, RouteDisbursalWaiting, d.RedirectTo)
}

func TestDecideAgreementUnsigned(t *testing.T) {
	app := application(domain.StatusDisbursal)
	src := &stubSources{
		apps: []*domain.LoanApplication{app},
		kyc:  &domain.KYCRecord{ApplicationID: app.ID},
		progress: &domain.PostDisbursalProgress{
			ApplicationID: app.ID, CurrentStep: 4, SelfieCaptured: true, SelfieVerified: true,
		},
	}
	g := newTestGate(src, nil)

	d := g.Decide(context.Background(), uuid.New(), RouteDashboard)
	require.False(t, d.Allowed)
	assert.Equal(t, StepPostDisbursal, d.Step)

	// Step 6 with a signed agreement counts as done.
	src.progress.CurrentStep = 6
	src.progress.AgreementSigned = true
	d = g.Decide(context.Background(), uuid.New(), RouteDashboard)
	assert.True(t, d.Allowed)
}

func TestDecideDocumentsPendingBeforeUnderReview(t *testing.T) {
	// Under-review status with an open need_document request: the upload
	// redirect outranks the review holding page.
	step := domain.StepComplete
	app := application(domain.StatusUnderReview)
	app.CurrentStep = &step

	src := &stubSources{
		apps: []*domain.LoanApplication{app},
		kyc:  &domain.KYCRecord{ApplicationID: app.ID},
		actions: []*domain.ValidationAction{
			{
				ApplicationID: app.ID,
				ActionType:    domain.ActionNeedDocument,
				Payload:       domain.DocumentList{"Aadhar Card", "Salary Slip"},
				CreatedAt:     time.Now(),
			},
		},
		uploads: []*domain.UploadedDocument{
			{ApplicationID: app.ID, DocumentName: "AADHAAR_CARD", UploadStatus: domain.UploadStatusPending},
		},
	}
	g := newTestGate(src, nil)

	d := g.Decide(context.Background(), uuid.New(), RouteDashboard)
	require.False(t, d.Allowed)
	assert.Equal(t, StepUploadDocuments, d.Step)

	// All documents satisfied: fall through to under-review.
	src.uploads = append(src.uploads, &domain.UploadedDocument{
		ApplicationID: app.ID, DocumentName: "salary slip", UploadStatus: domain.UploadStatusPending,
	})
	d = g.Decide(context.Background(), uuid.New(), RouteDashboard)
	require.False(t, d.Allowed)
	assert.Equal(t, StepUnderReview, d.Step)
}

func TestDecideUnderReviewRequiresCompleteStepOrQA(t *testing.T) {
	app := application(domain.StatusUnderReview)
	src := &stubSources{
		apps: []*domain.LoanApplication{app},
		kyc:  &domain.KYCRecord{ApplicationID: app.ID},
	}
	g := newTestGate(src, nil)

	// Form not complete: no gating.
	d := g.Decide(context.Background(), uuid.New(), RouteDashboard)
	assert.True(t, d.Allowed)

	// QA verification gates regardless of the step checkpoint.
	src.apps[0].Status = domain.StatusQAVerification
	d = g.Decide(context.Background(), uuid.New(), RouteDashboard)
	require.False(t, d.Allowed)
	assert.Equal(t, StepUnderReview, d.Step)
}

func TestDecideAllowsWhenAlreadyOnTargetRoute(t *testing.T) {
	step := domain.StepComplete
	app := application(domain.StatusUnderReview)
	app.CurrentStep = &step
	src := &stubSources{
		apps: []*domain.LoanApplication{app},
		kyc:  &domain.KYCRecord{ApplicationID: app.ID},
	}
	g := newTestGate(src, nil)

	d := g.Decide(context.Background(), uuid.New(), RouteUnderReview)
	assert.True(t, d.Allowed)
	assert.Equal(t, StepUnderReview, d.Step)
}

func TestDecideFailsOpenPerRule(t *testing.T) {
	// The KYC fetch blows up while the application list is healthy: the
	// ReKYC rule degrades to non-matching and the chain continues.
	step := domain.StepComplete
	app := application(domain.StatusUnderReview)
	app.CurrentStep = &step

	src := &stubSources{
		apps:   []*domain.LoanApplication{app},
		kycErr: errors.New("kyc service unavailable"),
	}
	g := newTestGate(src, nil)

	d := g.Decide(context.Background(), uuid.New(), RouteDashboard)
	require.False(t, d.Allowed)
	assert.Equal(t, StepUnderReview, d.Step)
}

func TestDecideFailsOpenWhenEverythingIsDown(t *testing.T) {
	boom := errors.New("storage down")
	src := &stubSources{appsErr: boom, bankErr: boom}
	g := newTestGate(src, nil)

	d := g.Decide(context.Background(), uuid.New(), "/profile")
	assert.True(t, d.Allowed)
}

func TestGuardSuppressesRepeatEvaluationForSameRoute(t *testing.T) {
	app := application(domain.StatusReadyForDisbursement)
	src := &stubSources{
		apps: []*domain.LoanApplication{app},
		kyc:  &domain.KYCRecord{ApplicationID: app.ID},
	}
	g := newTestGate(src, cache.NewMemoryCache())
	userID := uuid.New()

	first := g.Decide(context.Background(), userID, "/profile")
	callsAfterFirst := src.appCalls
	second := g.Decide(context.Background(), userID, "/profile")

	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, src.appCalls, "same-route re-check must not refetch")
}

func TestGuardResetsOnRouteChange(t *testing.T) {
	app := application(domain.StatusReadyForDisbursement)
	src := &stubSources{
		apps: []*domain.LoanApplication{app},
		kyc:  &domain.KYCRecord{ApplicationID: app.ID},
	}
	g := newTestGate(src, cache.NewMemoryCache())
	userID := uuid.New()

	d := g.Decide(context.Background(), userID, RouteDashboard)
	assert.True(t, d.Allowed)
	callsAfterFirst := src.appCalls

	// Route change forces a fresh evaluation, catching state the guard
	// would otherwise mask.
	d = g.Decide(context.Background(), userID, "/profile")
	require.False(t, d.Allowed)
	assert.Greater(t, src.appCalls, callsAfterFirst)
}
