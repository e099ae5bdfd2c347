package eligibility

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lend/internal/domain"
	"lend/pkg/config"
)

func testLendingConfig() config.LendingConfig {
	return config.LendingConfig{
		LoanLimitCeiling: decimal.NewFromInt(45600),
		StudentBaseLimit: decimal.NewFromInt(10000),
		GraduateLimit:    decimal.NewFromInt(25000),
		SalariedMaxAge:   45,
		StudentMinAge:    19,
		GeneralMinAge:    21,
		GeneralMaxAge:    60,
	}
}

func dob(age int, now time.Time) *time.Time {
	d := now.AddDate(-age, 0, -1)
	return &d
}

func TestClassifySalariedAgeGate(t *testing.T) {
	cfg := testLendingConfig()
	now := time.Now().UTC()

	ok := Classify(Profile{
		Employment:    domain.EmploymentSalaried,
		DateOfBirth:   dob(30, now),
		MonthlyIncome: decimal.NewFromInt(30000),
	}, DefaultIncomeTiers(), cfg, now)
	assert.Nil(t, ok.Hold)
	assert.Equal(t, domain.EligibilityEligible, ok.Eligibility)

	held := Classify(Profile{
		Employment:    domain.EmploymentSalaried,
		DateOfBirth:   dob(50, now),
		MonthlyIncome: decimal.NewFromInt(30000),
	}, DefaultIncomeTiers(), cfg, now)
	require.NotNil(t, held.Hold)
	assert.Equal(t, domain.HoldTypePermanent, held.Hold.HoldType)
	assert.Nil(t, held.Hold.HoldUntil)
	assert.Equal(t, domain.EligibilityNotEligible, held.Eligibility)
}

func TestClassifyUnderageStudentHeldUntilBirthday(t *testing.T) {
	cfg := testLendingConfig()
	now := time.Now().UTC()
	birth := now.AddDate(-17, 0, 0)

	decision := Classify(Profile{
		Employment:    domain.EmploymentStudent,
		DateOfBirth:   &birth,
		MonthlyIncome: decimal.NewFromInt(20000),
	}, DefaultIncomeTiers(), cfg, now)

	require.NotNil(t, decision.Hold)
	assert.Equal(t, domain.HoldTypeTemporary, decision.Hold.HoldType)
	require.NotNil(t, decision.Hold.HoldUntil)
	assert.Equal(t, birth.AddDate(19, 0, 0), *decision.Hold.HoldUntil)
	assert.Greater(t, decision.Hold.RemainingDays, 0)
	assert.Equal(t, domain.EligibilityNotEligible, decision.Eligibility)
}

func TestClassifyOtherEmploymentRejectedNotHeld(t *testing.T) {
	cfg := testLendingConfig()
	now := time.Now().UTC()

	decision := Classify(Profile{
		Employment:    domain.EmploymentSelfEmployed,
		DateOfBirth:   dob(19, now),
		MonthlyIncome: decimal.NewFromInt(30000),
	}, DefaultIncomeTiers(), cfg, now)

	assert.Nil(t, decision.Hold)
	assert.True(t, decision.Rejected)
	assert.Equal(t, domain.EligibilityNotEligible, decision.Eligibility)
}

func TestClassifyZeroLimitTierPlacesPermanentHold(t *testing.T) {
	cfg := testLendingConfig()
	now := time.Now().UTC()

	decision := Classify(Profile{
		Employment:    domain.EmploymentSalaried,
		DateOfBirth:   dob(30, now),
		MonthlyIncome: decimal.NewFromInt(12000),
	}, DefaultIncomeTiers(), cfg, now)

	require.NotNil(t, decision.Hold)
	assert.Equal(t, domain.HoldTypePermanent, decision.Hold.HoldType)
	assert.Nil(t, decision.Hold.HoldUntil)
	// The reason names the income bracket.
	assert.True(t, strings.Contains(decision.Hold.Reason, "0-14999"), "reason = %q", decision.Hold.Reason)
}

func TestClassifyStudentLimits(t *testing.T) {
	cfg := testLendingConfig()
	now := time.Now().UTC()

	undergrad := Classify(Profile{
		Employment:       domain.EmploymentStudent,
		DateOfBirth:      dob(20, now),
		MonthlyIncome:    decimal.NewFromInt(20000),
		GraduationStatus: domain.GraduationNotGraduated,
	}, DefaultIncomeTiers(), cfg, now)
	assert.True(t, undergrad.LoanLimit.Equal(decimal.NewFromInt(10000)))

	graduate := Classify(Profile{
		Employment:       domain.EmploymentStudent,
		DateOfBirth:      dob(23, now),
		MonthlyIncome:    decimal.NewFromInt(20000),
		GraduationStatus: domain.GraduationGraduated,
	}, DefaultIncomeTiers(), cfg, now)
	assert.True(t, graduate.LoanLimit.Equal(decimal.NewFromInt(25000)))
}

func TestClassifyTierLimits(t *testing.T) {
	cfg := testLendingConfig()
	now := time.Now().UTC()

	cases := []struct {
		income int64
		limit  int64
	}{
		{15000, 10000},
		{24999, 10000},
		{25000, 20000},
		{45000, 30000},
		{90000, 40000},
	}

	for _, tc := range cases {
		decision := Classify(Profile{
			Employment:    domain.EmploymentSalaried,
			DateOfBirth:   dob(30, now),
			MonthlyIncome: decimal.NewFromInt(tc.income),
		}, DefaultIncomeTiers(), cfg, now)
		assert.True(t, decision.LoanLimit.Equal(decimal.NewFromInt(tc.limit)),
			"income %d -> limit %s, want %d", tc.income, decision.LoanLimit, tc.limit)
	}
}

func TestHoldStatusClassification(t *testing.T) {
	now := time.Now().UTC()
	reason := "test hold"

	active := &domain.User{Status: domain.UserStatusActive}
	info := HoldStatus(active, now)
	assert.False(t, info.IsOnHold)
	assert.Equal(t, domain.HoldTypeNone, info.HoldType)

	// No reinstatement date: always permanent.
	permanent := &domain.User{Status: domain.UserStatusOnHold, HoldReason: &reason}
	info = HoldStatus(permanent, now)
	assert.True(t, info.IsOnHold)
	assert.Equal(t, domain.HoldTypePermanent, info.HoldType)

	// Future date: temporary with positive remaining days.
	until := now.AddDate(0, 0, 10)
	temporary := &domain.User{Status: domain.UserStatusOnHold, HoldReason: &reason, HoldUntil: &until}
	info = HoldStatus(temporary, now)
	assert.True(t, info.IsOnHold)
	assert.Equal(t, domain.HoldTypeTemporary, info.HoldType)
	assert.Greater(t, info.RemainingDays, 0)

	// Lapsed date: the hold no longer applies.
	past := now.AddDate(0, 0, -1)
	lapsed := &domain.User{Status: domain.UserStatusOnHold, HoldReason: &reason, HoldUntil: &past}
	info = HoldStatus(lapsed, now)
	assert.False(t, info.IsOnHold)
	assert.True(t, info.CanReapply)
}

func TestCoolingPeriod(t *testing.T) {
	cfg := testLendingConfig()

	assert.Nil(t, CoolingPeriod(decimal.NewFromInt(30000), cfg))

	hold := CoolingPeriod(decimal.NewFromInt(50000), cfg)
	require.NotNil(t, hold)
	assert.Equal(t, domain.HoldTypePermanent, hold.HoldType)
	assert.False(t, hold.CanReapply)
	assert.Contains(t, hold.Reason, "cooling period")

	// Ceiling itself counts.
	assert.NotNil(t, CoolingPeriod(decimal.NewFromInt(45600), cfg))
}
