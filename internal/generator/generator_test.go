package generator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_NoHistoryForcesZeroDebt(t *testing.T) {
	g := NewWithSeed(1)

	for i := 0; i < 500; i++ {
		fs := g.Generate(false)
		assert.Zero(t, fs.Debt)
		assert.Zero(t, fs.CatDebt)
		assert.Zero(t, fs.RatioDebtIncome)
		assert.Zero(t, fs.RatioDebtSavings)
	}
}

func TestGenerate_BaseFieldRanges(t *testing.T) {
	g := NewWithSeed(2)

	for i := 0; i < 500; i++ {
		fs := g.Generate(true)
		assert.GreaterOrEqual(t, fs.Income, int64(IncomeMin))
		assert.LessOrEqual(t, fs.Income, int64(IncomeMax))
		assert.GreaterOrEqual(t, fs.Savings, int64(SavingsMin))
		assert.LessOrEqual(t, fs.Savings, int64(SavingsMax))
		assert.GreaterOrEqual(t, fs.Expenditure12, int64(Expenditure12Min))
		assert.LessOrEqual(t, fs.Expenditure12, int64(Expenditure12Max))
		assert.GreaterOrEqual(t, fs.Tax12, int64(Tax12Min))
		assert.LessOrEqual(t, fs.Tax12, int64(Tax12Max))
		assert.GreaterOrEqual(t, fs.Debt, int64(DebtMin))
		assert.LessOrEqual(t, fs.Debt, int64(DebtMax))
		assert.Contains(t, []int{0, 1}, fs.CatDependents)
	}
}

func TestGenerate_CatDebtTracksDebt(t *testing.T) {
	g := NewWithSeed(3)

	for i := 0; i < 500; i++ {
		fs := g.Generate(true)
		if fs.Debt > 0 {
			assert.Equal(t, 1, fs.CatDebt)
		} else {
			assert.Equal(t, 0, fs.CatDebt)
		}
	}
}

func TestRatio_ZeroDenominator(t *testing.T) {
	assert.Equal(t, 0.0, ratio(100, 0))
	assert.Equal(t, 0.0, ratio(0, 0))
	assert.Equal(t, 0.5, ratio(1, 2))
	assert.Equal(t, 0.33, ratio(1, 3))
}

func TestGenerate_ZeroIncomeRatios(t *testing.T) {
	g := NewWithSeed(4)

	// Hunt for a sample with zero income; the range includes it, and with a
	// fixed seed this loop is deterministic. Also exercises the guard directly.
	found := false
	for i := 0; i < 200000 && !found; i++ {
		fs := g.Generate(true)
		if fs.Income == 0 {
			found = true
			assert.Equal(t, 0.0, fs.RatioSavingsIncome)
			assert.Equal(t, 0.0, fs.RatioExpendIncome)
			assert.Equal(t, 0.0, fs.RatioDebtIncome)
		}
	}
	if !found {
		t.Log("no zero-income sample drawn; ratio guard covered by TestRatio_ZeroDenominator")
	}
}

func TestFeatureSet_WireSchema(t *testing.T) {
	g := NewWithSeed(5)
	fs := g.Generate(true)

	raw, err := json.Marshal(fs)
	require.NoError(t, err)

	var m map[string]json.Number
	require.NoError(t, json.Unmarshal(raw, &m))

	for _, key := range []string{
		"INCOME", "SAVINGS", "T_EXPENDITURE_12", "T_TAX_12", "DEBT",
		"CAT_DEPENDENTS",
		"R_SAVINGS_INCOME", "R_EXPENDITURE_INCOME", "R_DEBT_INCOME", "R_DEBT_SAVINGS",
		"CAT_DEBT",
	} {
		assert.Contains(t, m, key)
	}
	assert.Len(t, m, 11)
}

func TestGenerate_ConcurrentUse(t *testing.T) {
	g := New()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				g.Generate(j%2 == 0)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
