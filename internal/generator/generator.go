package generator

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// FeatureSet is the fixed-schema financial feature record consumed by the
// scoring pipeline. Field names are part of the wire contract and must not change.
type FeatureSet struct {
	Income             int64   `json:"INCOME"`
	Savings            int64   `json:"SAVINGS"`
	Expenditure12      int64   `json:"T_EXPENDITURE_12"`
	Tax12              int64   `json:"T_TAX_12"`
	Debt               int64   `json:"DEBT"`
	CatDependents      int     `json:"CAT_DEPENDENTS"`
	RatioSavingsIncome float64 `json:"R_SAVINGS_INCOME"`
	RatioExpendIncome  float64 `json:"R_EXPENDITURE_INCOME"`
	RatioDebtIncome    float64 `json:"R_DEBT_INCOME"`
	RatioDebtSavings   float64 `json:"R_DEBT_SAVINGS"`
	CatDebt            int     `json:"CAT_DEBT"`
}

// Inclusive ranges for the five base features. Taken from the training
// dataset the scoring model was fitted on.
const (
	IncomeMin        = 0
	IncomeMax        = 662094
	SavingsMin       = 0
	SavingsMax       = 2911863
	Expenditure12Min = 1177
	Expenditure12Max = 472924
	Tax12Min         = 0
	Tax12Max         = 17013
	DebtMin          = 0
	DebtMax          = 5968620
)

// Generator produces synthetic financial feature sets. Safe for concurrent use.
type Generator struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// New returns a generator seeded from the clock
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a generator with a fixed seed, for reproducible output
func NewWithSeed(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// Generate produces one feature set. When hasHistory is false the debt field
// is forced to zero regardless of its configured range.
func (g *Generator) Generate(hasHistory bool) FeatureSet {
	g.mu.Lock()
	defer g.mu.Unlock()

	fs := FeatureSet{
		Income:        g.intInRange(IncomeMin, IncomeMax),
		Savings:       g.intInRange(SavingsMin, SavingsMax),
		Expenditure12: g.intInRange(Expenditure12Min, Expenditure12Max),
		Tax12:         g.intInRange(Tax12Min, Tax12Max),
	}
	if hasHistory {
		fs.Debt = g.intInRange(DebtMin, DebtMax)
	}

	if g.rand.Float64() < 0.5 {
		fs.CatDependents = 1
	}

	fs.RatioSavingsIncome = ratio(fs.Savings, fs.Income)
	fs.RatioExpendIncome = ratio(fs.Expenditure12, fs.Income)
	fs.RatioDebtIncome = ratio(fs.Debt, fs.Income)
	fs.RatioDebtSavings = ratio(fs.Debt, fs.Savings)
	if fs.Debt > 0 {
		fs.CatDebt = 1
	}

	return fs
}

// intInRange returns a uniform random integer in [min, max] inclusive
func (g *Generator) intInRange(min, max int64) int64 {
	return min + g.rand.Int63n(max-min+1)
}

// ratio divides numerator by denominator rounded to 2 decimals.
// A zero denominator yields 0.0 rather than a fault.
func ratio(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0.0
	}
	return math.Round(float64(numerator)/float64(denominator)*100) / 100
}
