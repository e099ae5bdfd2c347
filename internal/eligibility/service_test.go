package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lend/internal/domain"
	"lend/pkg/cache"
	pkgerrors "lend/pkg/errors"
	"lend/pkg/logger"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdateHold(ctx context.Context, id uuid.UUID, status domain.UserStatus, reason *string, until *time.Time, eligibility domain.EligibilityStatus) error {
	args := m.Called(ctx, id, status, reason, until, eligibility)
	return args.Error(0)
}

func (m *mockUserRepository) UpdateLoanLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) error {
	args := m.Called(ctx, id, limit)
	return args.Error(0)
}

func (m *mockUserRepository) UpdateGraduation(ctx context.Context, id uuid.UUID, status domain.GraduationStatus, limit decimal.Decimal, graduatedAt *time.Time) error {
	args := m.Called(ctx, id, status, limit, graduatedAt)
	return args.Error(0)
}

func newTestService(repo *mockUserRepository) *Service {
	return NewService(repo, cache.NewMemoryCache(), testLendingConfig(), logger.NewNop())
}

func eligibleUser() *domain.User {
	dob := time.Now().UTC().AddDate(-30, 0, -1)
	return &domain.User{
		ID:            uuid.New(),
		Status:        domain.UserStatusActive,
		Employment:    domain.EmploymentSalaried,
		DateOfBirth:   &dob,
		MonthlyIncome: decimal.NewFromInt(30000),
		LoanLimit:     decimal.NewFromInt(20000),
	}
}

func TestEvaluateProfilePlacesHoldOnZeroTier(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestService(repo)

	user := eligibleUser()
	user.MonthlyIncome = decimal.NewFromInt(10000)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("UpdateHold", mock.Anything, user.ID, domain.UserStatusOnHold,
		mock.AnythingOfType("*string"), (*time.Time)(nil), domain.EligibilityNotEligible).Return(nil)

	decision, err := svc.EvaluateProfile(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, decision.Hold)
	assert.Equal(t, domain.HoldTypePermanent, decision.Hold.HoldType)
	repo.AssertExpectations(t)
}

func TestEvaluateProfileIsIdempotentForUnchangedHold(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestService(repo)

	user := eligibleUser()
	user.MonthlyIncome = decimal.NewFromInt(10000)
	user.Status = domain.UserStatusOnHold
	reason := "monthly income 10000 falls in the non-lendable bracket 0-14999"
	user.HoldReason = &reason

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	decision, err := svc.EvaluateProfile(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, decision.Hold)
	// No UpdateHold call expected: the persisted hold already matches.
	repo.AssertNotCalled(t, "UpdateHold", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateProfileReinstatesAndUpdatesLimit(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestService(repo)

	user := eligibleUser()
	user.LoanLimit = decimal.NewFromInt(10000) // stale, income now maps to 20000

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("UpdateHold", mock.Anything, user.ID, domain.UserStatusActive,
		(*string)(nil), (*time.Time)(nil), domain.EligibilityEligible).Return(nil)
	repo.On("UpdateLoanLimit", mock.Anything, user.ID,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(20000)) })).Return(nil)

	decision, err := svc.EvaluateProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, decision.Hold)
	assert.Equal(t, domain.EligibilityEligible, decision.Eligibility)
	repo.AssertExpectations(t)
}

func TestEvaluateProfileDeletedUser(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestService(repo)

	user := eligibleUser()
	user.Status = domain.UserStatusDeleted
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.EvaluateProfile(context.Background(), user.ID)
	assert.ErrorIs(t, err, pkgerrors.ErrUserDeleted)
}

func TestCheckCanApplyCoolingPeriod(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestService(repo)

	user := eligibleUser()
	user.LoanLimit = decimal.NewFromInt(50000)

	hold := svc.CheckCanApply(context.Background(), user, time.Now().UTC())
	require.NotNil(t, hold)
	assert.False(t, hold.CanReapply)
	assert.Contains(t, hold.Reason, "cooling period")
}

func TestCheckCanApplyActiveUser(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestService(repo)

	assert.Nil(t, svc.CheckCanApply(context.Background(), eligibleUser(), time.Now().UTC()))
}

func TestUpdateGraduationStatusUpsell(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestService(repo)

	user := eligibleUser()
	user.Employment = domain.EmploymentStudent
	user.GraduationStatus = domain.GraduationNotGraduated
	user.LoanLimit = decimal.NewFromInt(10000)

	graduatedAt := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)
	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("UpdateGraduation", mock.Anything, user.ID, domain.GraduationGraduated,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(25000)) }),
		mock.MatchedBy(func(d *time.Time) bool { return d != nil && d.Equal(graduatedAt) })).Return(nil)

	limit, err := svc.UpdateGraduationStatus(context.Background(), user.ID, domain.GraduationGraduated, graduatedAt)
	require.NoError(t, err)
	assert.True(t, limit.Equal(decimal.NewFromInt(25000)))
	repo.AssertExpectations(t)
}

func TestUpdateGraduationStatusRejectsNonStudent(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestService(repo)

	user := eligibleUser()
	user.Employment = domain.EmploymentSalaried
	user.GraduationStatus = domain.GraduationNotGraduated

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.UpdateGraduationStatus(context.Background(), user.ID, domain.GraduationGraduated, time.Now().UTC())
	assert.ErrorIs(t, err, pkgerrors.ErrGraduationNotStudent)
	repo.AssertNotCalled(t, "UpdateGraduation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateGraduationStatusRejectsDowngrade(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestService(repo)

	user := eligibleUser()
	user.Employment = domain.EmploymentStudent
	user.GraduationStatus = domain.GraduationGraduated

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	_, err := svc.UpdateGraduationStatus(context.Background(), user.ID, domain.GraduationNotGraduated, time.Now().UTC())
	assert.ErrorIs(t, err, pkgerrors.ErrGraduationDowngrade)
	repo.AssertNotCalled(t, "UpdateGraduation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateGraduationStatusNoop(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newTestService(repo)

	user := eligibleUser()
	user.Employment = domain.EmploymentStudent
	user.GraduationStatus = domain.GraduationGraduated
	user.LoanLimit = decimal.NewFromInt(25000)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	limit, err := svc.UpdateGraduationStatus(context.Background(), user.ID, domain.GraduationGraduated, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, limit.Equal(decimal.NewFromInt(25000)))
	repo.AssertNotCalled(t, "UpdateGraduation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
