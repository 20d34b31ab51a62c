package bankxlive_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/arhyth/bankxlive"
)

func TestFraudSignal(t *testing.T) {
	signal := bankxlive.NewFraudSignal(bankxlive.DefaultFraudThresholds())
	actor := bankxlive.Account{AcctID: "0350000001"}
	txn := func(amount int64) bankxlive.Transaction {
		return bankxlive.Transaction{
			From:   actor.AcctID,
			To:     "0350000002",
			Amount: decimal.NewFromInt(amount),
			Kind:   bankxlive.KindTransfer,
		}
	}

	t.Run("flags a very large amount with both reasons", func(tt *testing.T) {
		as := assert.New(tt)
		got := signal.Evaluate(txn(2_000_000), actor)
		as.True(got.Suspicious)
		as.Equal([]string{"unusually large amount", "rapid high-value activity"}, got.Reasons)
	})

	t.Run("flags a high-value amount below the large threshold", func(tt *testing.T) {
		as := assert.New(tt)
		got := signal.Evaluate(txn(150_000), actor)
		as.True(got.Suspicious)
		as.Equal([]string{"rapid high-value activity"}, got.Reasons)
	})

	t.Run("thresholds are exclusive", func(tt *testing.T) {
		as := assert.New(tt)
		got := signal.Evaluate(txn(100_000), actor)
		as.False(got.Suspicious)
	})

	t.Run("passes an ordinary amount with an empty reason list", func(tt *testing.T) {
		as := assert.New(tt)
		got := signal.Evaluate(txn(300), actor)
		as.False(got.Suspicious)
		as.NotNil(got.Reasons)
		as.Empty(got.Reasons)
	})

	t.Run("runs extra rules after the built-in ones", func(tt *testing.T) {
		as := assert.New(tt)
		unverified := bankxlive.FraudRule{
			Name: "unverified sender",
			Check: func(_ bankxlive.Transaction, a bankxlive.Account) bool {
				return !a.KYCVerified
			},
		}
		got := bankxlive.NewFraudSignal(bankxlive.DefaultFraudThresholds(), unverified).Evaluate(txn(300), actor)
		as.True(got.Suspicious)
		as.Equal([]string{"unverified sender"}, got.Reasons)
	})
}
