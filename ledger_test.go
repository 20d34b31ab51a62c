package bankxlive_test

import (
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arhyth/bankxlive"
)

func transferRec(from, to string, amount int64) bankxlive.Transaction {
	return bankxlive.Transaction{
		From:   from,
		To:     to,
		Amount: decimal.NewFromInt(amount),
		Kind:   bankxlive.KindTransfer,
		Status: bankxlive.StatusCompleted,
	}
}

func TestLedgerAppend(t *testing.T) {
	t.Run("assigns increasing ids and a creation time", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		store := newTestStore(tt)

		first, err := store.Ledger.Append(transferRec("0350000001", "0350000002", 10))
		reqrd.NoError(err)
		second, err := store.Ledger.Append(transferRec("0350000002", "0350000001", 5))
		reqrd.NoError(err)

		as.Greater(second.ID.Int64(), first.ID.Int64())
		as.False(first.CreatedAt.IsZero())
		as.Equal(bankxlive.StatusCompleted, first.Status)
	})

	t.Run("requires an explicit status, a known type and a positive amount", func(tt *testing.T) {
		as := assert.New(tt)
		store := newTestStore(tt)

		_, err := store.Ledger.Append(bankxlive.Transaction{
			From:   "0350000001",
			Amount: decimal.Zero,
			Kind:   "lottery",
		})
		errbr := &bankxlive.ErrBadRequest{}
		as.True(errors.As(err, errbr))
		as.Contains(errbr.Fields, "status")
		as.Contains(errbr.Fields, "type")
		as.Contains(errbr.Fields, "amount")
	})

	t.Run("rejects a reused reference", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		store := newTestStore(tt)

		rec := bankxlive.Transaction{
			From:      "0350000001",
			Amount:    decimal.NewFromInt(100),
			Kind:      bankxlive.KindBillPayment,
			Status:    bankxlive.StatusPending,
			Reference: "BP-1",
		}
		_, err := store.Ledger.Append(rec)
		reqrd.NoError(err)
		_, err = store.Ledger.Append(rec)
		as.True(errors.As(err, &bankxlive.ErrConflict{}))

		got, err := store.Ledger.ByReference("BP-1")
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusPending, got.Status)
	})
}

func TestLedgerQueries(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	store := newTestStore(t)

	a, b, c := "0350000001", "0350000002", "0350000003"
	t1, err := store.Ledger.Append(transferRec(a, b, 1))
	reqrd.NoError(err)
	_, err = store.Ledger.Append(transferRec(b, c, 2))
	reqrd.NoError(err)
	t3, err := store.Ledger.Append(transferRec(c, a, 3))
	reqrd.NoError(err)

	t.Run("ByAccount matches source or destination in insertion order", func(tt *testing.T) {
		got, err := store.Ledger.ByAccount(a, bankxlive.OrderAsc)
		reqrd.NoError(err)
		reqrd.Len(got, 2)
		as.Equal(t1.ID, got[0].ID)
		as.Equal(t3.ID, got[1].ID)
	})

	t.Run("ByAccount returns newest first on request", func(tt *testing.T) {
		got, err := store.Ledger.ByAccount(a, bankxlive.OrderDesc)
		reqrd.NoError(err)
		reqrd.Len(got, 2)
		as.Equal(t3.ID, got[0].ID)
		as.Equal(t1.ID, got[1].ID)
	})

	t.Run("ByAccount returns an empty slice for an account with no entries", func(tt *testing.T) {
		got, err := store.Ledger.ByAccount("0359999999", bankxlive.OrderAsc)
		reqrd.NoError(err)
		as.NotNil(got)
		as.Empty(got)
	})

	t.Run("All returns every entry", func(tt *testing.T) {
		got, err := store.Ledger.All(bankxlive.OrderAsc)
		reqrd.NoError(err)
		as.Len(got, 3)
	})

	t.Run("Get returns ErrNotFound for an unknown id", func(tt *testing.T) {
		_, err := store.Ledger.Get(snowflake.ParseInt64(42))
		as.True(errors.As(err, &bankxlive.ErrNotFound{}))
	})
}

func TestLedgerSetStatus(t *testing.T) {
	pending := func(tt *testing.T, store *bankxlive.Store) *bankxlive.Transaction {
		txn, err := store.Ledger.Append(bankxlive.Transaction{
			From:   "0350000001",
			Amount: decimal.NewFromInt(100),
			Kind:   bankxlive.KindAirtimePurchase,
			Status: bankxlive.StatusPending,
		})
		require.NoError(tt, err)
		return txn
	}

	t.Run("moves a pending entry to completed", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		store := newTestStore(tt)
		txn := pending(tt, store)

		got, err := store.Ledger.SetStatus(txn.ID, bankxlive.StatusCompleted)
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusCompleted, got.Status)
		as.Equal(txn.CreatedAt, got.CreatedAt)
	})

	t.Run("never moves a terminal entry", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		store := newTestStore(tt)
		txn := pending(tt, store)
		_, err := store.Ledger.SetStatus(txn.ID, bankxlive.StatusFailed)
		reqrd.NoError(err)

		for _, next := range []bankxlive.Status{bankxlive.StatusPending, bankxlive.StatusCompleted, bankxlive.StatusFailed} {
			_, err = store.Ledger.SetStatus(txn.ID, next)
			errst := &bankxlive.ErrStatusTransition{}
			as.True(errors.As(err, errst), "status %s", next)
			as.Equal(bankxlive.StatusFailed, errst.From)
		}
		got, err := store.Ledger.Get(txn.ID)
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusFailed, got.Status)
	})

	t.Run("returns ErrNotFound for an unknown id", func(tt *testing.T) {
		store := newTestStore(tt)
		_, err := store.Ledger.SetStatus(snowflake.ParseInt64(7), bankxlive.StatusCompleted)
		assert.True(tt, errors.As(err, &bankxlive.ErrNotFound{}))
	})
}
