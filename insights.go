package bankxlive

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// budgetRatio is the share of the current balance treated as the monthly
// spending limit.
var budgetRatio = decimal.New(7, -1)

type DailySpend struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

type Insights struct {
	TotalSpent      decimal.Decimal          `json:"totalSpent"`
	SpendingByType  map[Kind]decimal.Decimal `json:"spendingByCategory"`
	MonthlyLimit    decimal.Decimal          `json:"monthlyLimit"`
	RemainingBudget decimal.Decimal          `json:"remainingBudget"`
	BudgetExceeded  bool                     `json:"budgetExceeded"`
	Trend           []DailySpend             `json:"trend"`
}

// AnalyzeSpending summarises the completed outgoing entries of acct.
func AnalyzeSpending(acct Account, txns []Transaction) Insights {
	out := Insights{
		TotalSpent:     decimal.Zero,
		SpendingByType: map[Kind]decimal.Decimal{},
		Trend:          []DailySpend{},
	}
	daily := map[string]decimal.Decimal{}
	for _, t := range txns {
		if t.From != acct.AcctID || t.Status != StatusCompleted {
			continue
		}
		out.TotalSpent = out.TotalSpent.Add(t.Amount)
		out.SpendingByType[t.Kind] = out.SpendingByType[t.Kind].Add(t.Amount)
		day := t.CreatedAt.UTC().Format("2006-01-02")
		daily[day] = daily[day].Add(t.Amount)
	}
	for day, amt := range daily {
		out.Trend = append(out.Trend, DailySpend{Date: day, Amount: amt})
	}
	sort.Slice(out.Trend, func(i, j int) bool { return out.Trend[i].Date < out.Trend[j].Date })

	out.MonthlyLimit = acct.Balance.Mul(budgetRatio).Round(2)
	out.RemainingBudget = out.MonthlyLimit.Sub(out.TotalSpent)
	out.BudgetExceeded = out.TotalSpent.GreaterThan(out.MonthlyLimit)
	return out
}

func (s *serviceImpl) Insights(ctx context.Context, req AccountReq) (*Insights, error) {
	acct, err := s.store.Accounts.Get(req.AcctID)
	if err != nil {
		return nil, err
	}
	txns, err := s.store.Ledger.ByAccount(req.AcctID, OrderAsc)
	if err != nil {
		return nil, err
	}
	ins := AnalyzeSpending(*acct, txns)
	if ins.BudgetExceeded {
		s.log.Info().Str("acctID", acct.AcctID).Msg("budget alert triggered")
		s.ntf.Notify(acct.AcctID, Notification{
			Type:    NotifyBudgetAlert,
			Title:   "Budget Alert",
			Message: "You've exceeded 70% of your monthly budget limit",
		})
	}
	return &ins, nil
}
