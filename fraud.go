package bankxlive

import "github.com/shopspring/decimal"

type FraudThresholds struct {
	LargeAmount    decimal.Decimal
	RecentActivity decimal.Decimal
}

func DefaultFraudThresholds() FraudThresholds {
	return FraudThresholds{
		LargeAmount:    decimal.NewFromInt(1_000_000),
		RecentActivity: decimal.NewFromInt(100_000),
	}
}

type FraudAssessment struct {
	Suspicious bool     `json:"suspicious"`
	Reasons    []string `json:"reasons"`
}

// FraudRule flags a transaction when Check returns true.
type FraudRule struct {
	Name  string
	Check func(txn Transaction, actor Account) bool
}

// FraudSignal evaluates a single transaction against its rules. It keeps no
// state: the "rapid activity" rule looks at the one transaction only, there
// is no trailing window.
type FraudSignal struct {
	rules []FraudRule
}

func NewFraudSignal(th FraudThresholds, extra ...FraudRule) *FraudSignal {
	rules := []FraudRule{
		{
			Name: "unusually large amount",
			Check: func(txn Transaction, _ Account) bool {
				return txn.Amount.GreaterThan(th.LargeAmount)
			},
		},
		{
			Name: "rapid high-value activity",
			Check: func(txn Transaction, _ Account) bool {
				return txn.Amount.GreaterThan(th.RecentActivity)
			},
		},
	}
	return &FraudSignal{rules: append(rules, extra...)}
}

func (f *FraudSignal) Evaluate(txn Transaction, actor Account) FraudAssessment {
	reasons := []string{}
	for _, r := range f.rules {
		if r.Check(txn, actor) {
			reasons = append(reasons, r.Name)
		}
	}
	return FraudAssessment{
		Suspicious: len(reasons) > 0,
		Reasons:    reasons,
	}
}
