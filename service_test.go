package bankxlive_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/arhyth/bankxlive"
	"github.com/arhyth/bankxlive/mocks"
)

// notifType matches a Notification by its type.
type notifType bankxlive.NotificationType

func (m notifType) Matches(x any) bool {
	n, ok := x.(bankxlive.Notification)
	return ok && n.Type == bankxlive.NotificationType(m)
}

func (m notifType) String() string {
	return fmt.Sprintf("notification of type %s", string(m))
}

type serviceFixture struct {
	store *bankxlive.Store
	gw    *mocks.MockGateway
	ntf   *mocks.MockNotifier
	svc   bankxlive.Service
}

func newServiceFixture(tt *testing.T, opts ...bankxlive.Option) *serviceFixture {
	tt.Helper()
	ctrl := gomock.NewController(tt)
	log := zerolog.Nop()
	f := &serviceFixture{
		store: newTestStore(tt),
		gw:    mocks.NewMockGateway(ctrl),
		ntf:   mocks.NewMockNotifier(ctrl),
	}
	f.svc = bankxlive.NewService(f.store, f.gw, f.ntf, &log, append([]bankxlive.Option{bankxlive.WithHashCost(4)}, opts...)...)
	return f
}

func (f *serviceFixture) balance(tt *testing.T, acctID string) decimal.Decimal {
	tt.Helper()
	acct, err := f.store.Accounts.Get(acctID)
	require.NoError(tt, err)
	return acct.Balance
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("moves funds, records one completed entry and notifies the recipient", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 1000)
		b := fundedAccount(tt, f.store, "bola", 500)
		f.ntf.EXPECT().
			Notify(b.AcctID, notifType(bankxlive.NotifyTransaction)).
			Return(true).
			Times(1)

		res, err := f.svc.Transfer(ctx, bankxlive.TransferReq{From: a.AcctID, To: b.AcctID, Amount: decimal.NewFromInt(300)})
		reqrd.NoError(err)
		as.True(res.Balance.Equal(decimal.NewFromInt(700)))
		as.False(res.FraudCheck.Suspicious)
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(700)))
		as.True(f.balance(tt, b.AcctID).Equal(decimal.NewFromInt(800)))

		txns, err := f.store.Ledger.All(bankxlive.OrderAsc)
		reqrd.NoError(err)
		reqrd.Len(txns, 1)
		as.Equal(a.AcctID, txns[0].From)
		as.Equal(b.AcctID, txns[0].To)
		as.Equal(bankxlive.KindTransfer, txns[0].Kind)
		as.Equal(bankxlive.StatusCompleted, txns[0].Status)
		as.True(txns[0].Amount.Equal(decimal.NewFromInt(300)))
	})

	t.Run("completes a very large transfer and raises a fraud alert to the sender", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 3_000_000)
		b := fundedAccount(tt, f.store, "bola", 0)
		f.ntf.EXPECT().
			Notify(a.AcctID, notifType(bankxlive.NotifyFraudAlert)).
			Return(true).
			Times(1)
		f.ntf.EXPECT().
			Notify(b.AcctID, notifType(bankxlive.NotifyTransaction)).
			Return(false).
			Times(1)

		res, err := f.svc.Transfer(ctx, bankxlive.TransferReq{From: a.AcctID, To: b.AcctID, Amount: decimal.NewFromInt(2_000_000)})
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusCompleted, res.Transaction.Status)
		as.True(res.FraudCheck.Suspicious)
		as.Contains(res.FraudCheck.Reasons, "unusually large amount")
		as.True(f.balance(tt, b.AcctID).Equal(decimal.NewFromInt(2_000_000)))
	})

	t.Run("leaves balances and the ledger untouched on insufficient funds", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 100)
		b := fundedAccount(tt, f.store, "bola", 500)

		_, err := f.svc.Transfer(ctx, bankxlive.TransferReq{From: a.AcctID, To: b.AcctID, Amount: decimal.NewFromInt(300)})
		as.True(errors.As(err, &bankxlive.ErrInsufficientFunds{}))
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(100)))
		as.True(f.balance(tt, b.AcctID).Equal(decimal.NewFromInt(500)))
		txns, err := f.store.Ledger.All(bankxlive.OrderAsc)
		reqrd.NoError(err)
		as.Empty(txns)
	})

	t.Run("rejects invalid amounts and self transfers before touching the store", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 100)
		reqrd.NoError(f.store.Close())

		for _, req := range []bankxlive.TransferReq{
			{From: a.AcctID, To: "0350000002", Amount: decimal.NewFromInt(-5)},
			{From: a.AcctID, To: "0350000002", Amount: decimal.Zero},
			{From: a.AcctID, To: a.AcctID, Amount: decimal.NewFromInt(10)},
		} {
			_, err := f.svc.Transfer(ctx, req)
			as.True(errors.As(err, &bankxlive.ErrInvalidTransfer{}), "amount %s to %s: %v", req.Amount, req.To, err)
		}
	})

	t.Run("reports an unknown recipient", func(tt *testing.T) {
		as := assert.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 100)

		_, err := f.svc.Transfer(ctx, bankxlive.TransferReq{From: a.AcctID, To: "0000000000", Amount: decimal.NewFromInt(10)})
		errnf := &bankxlive.ErrNotFound{}
		as.True(errors.As(err, errnf))
		as.Equal("recipient", errnf.Resource)
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(100)))
	})

	t.Run("journals the entry and both account snapshots", func(tt *testing.T) {
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		journal := mocks.NewMockJournal(ctrl)
		f := newServiceFixture(tt, bankxlive.WithJournal(journal))
		a := fundedAccount(tt, f.store, "ada", 1000)
		b := fundedAccount(tt, f.store, "bola", 500)
		f.ntf.EXPECT().Notify(b.AcctID, gomock.Any()).Return(true)
		journal.EXPECT().
			RecordAccounts(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).
			Times(1)
		journal.EXPECT().
			RecordTransactions(gomock.Any(), gomock.Any()).
			Return(errors.New("connection reset")).
			Times(1)

		_, err := f.svc.Transfer(ctx, bankxlive.TransferReq{From: a.AcctID, To: b.AcctID, Amount: decimal.NewFromInt(1)})
		reqrd.NoError(err)
	})
}

func TestTransferConservesMoney(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	f := newServiceFixture(t)
	f.ntf.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(true).AnyTimes()

	const n = 8
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fundedAccount(t, f.store, fmt.Sprintf("user%d", i), 1000).AcctID
	}

	var wg sync.WaitGroup
	for i := 0; i < 400; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			from, to := ids[rand.IntN(n)], ids[rand.IntN(n)]
			amount := decimal.NewFromInt(int64(rand.IntN(300) + 1))
			_, err := f.svc.Transfer(context.Background(), bankxlive.TransferReq{From: from, To: to, Amount: amount})
			if err != nil {
				as.True(errors.As(err, &bankxlive.ErrInsufficientFunds{}) || errors.As(err, &bankxlive.ErrInvalidTransfer{}), "unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	total := decimal.Zero
	for _, id := range ids {
		bal := f.balance(t, id)
		as.False(bal.IsNegative())
		total = total.Add(bal)
	}
	as.True(total.Equal(decimal.NewFromInt(n*1000)), "total %s", total)

	txns, err := f.store.Ledger.All(bankxlive.OrderAsc)
	reqrd.NoError(err)
	for _, txn := range txns {
		as.Equal(bankxlive.StatusCompleted, txn.Status)
	}
}

func TestGatewayPayments(t *testing.T) {
	ctx := context.Background()
	checkout := &bankxlive.PaymentInit{AuthorizationURL: "https://checkout.paystack.com/x"}

	t.Run("bill payment opens a pending entry without touching the balance", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 1000)
		f.gw.EXPECT().
			InitializePayment(gomock.Any(), gomock.AssignableToTypeOf(bankxlive.PaymentReq{})).
			DoAndReturn(func(_ context.Context, req bankxlive.PaymentReq) (*bankxlive.PaymentInit, error) {
				as.True(req.Amount.Equal(decimal.NewFromInt(250)))
				as.Equal("bill_payment", req.Metadata["type"])
				as.Equal(a.AcctID, req.Metadata["accountNumber"])
				return checkout, nil
			})

		res, err := f.svc.PayBill(ctx, bankxlive.BillPaymentReq{
			AcctID:     a.AcctID,
			BillType:   "electricity",
			BillNumber: "4502-1182",
			Amount:     decimal.NewFromInt(250),
		})
		reqrd.NoError(err)
		as.Equal(checkout.AuthorizationURL, res.AuthorizationURL)
		as.NotEmpty(res.Reference)
		as.Equal(res.Reference, res.Transaction.Reference)
		as.Equal(bankxlive.StatusPending, res.Transaction.Status)
		as.Equal(bankxlive.KindBillPayment, res.Transaction.Kind)
		as.JSONEq(`{"billType":"electricity","billNumber":"4502-1182"}`, string(res.Transaction.Metadata))
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(1000)))
	})

	t.Run("a gateway failure leaves no ledger entry", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 1000)
		f.gw.EXPECT().
			InitializePayment(gomock.Any(), gomock.Any()).
			Return(nil, bankxlive.ErrGateway{Op: "initialize", Timeout: true})

		_, err := f.svc.PurchaseAirtime(ctx, bankxlive.AirtimeReq{AcctID: a.AcctID, PhoneNumber: "08031234567", Provider: "MTN", Amount: decimal.NewFromInt(100)})
		errgw := &bankxlive.ErrGateway{}
		reqrd.True(errors.As(err, errgw))
		as.True(errgw.Timeout)
		txns, err := f.store.Ledger.All(bankxlive.OrderAsc)
		reqrd.NoError(err)
		as.Empty(txns)
	})

	t.Run("insufficient funds are caught before the gateway is called", func(tt *testing.T) {
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 50)
		_, err := f.svc.PurchaseAirtime(ctx, bankxlive.AirtimeReq{AcctID: a.AcctID, PhoneNumber: "08031234567", Provider: "MTN", Amount: decimal.NewFromInt(100)})
		assert.True(tt, errors.As(err, &bankxlive.ErrInsufficientFunds{}))
	})

	t.Run("external transfers need a supported bank", func(tt *testing.T) {
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 500)
		_, err := f.svc.ExternalTransfer(ctx, bankxlive.ExternalTransferReq{AcctID: a.AcctID, BankID: "999", RecipientAccount: "0581234567", Amount: decimal.NewFromInt(100)})
		assert.True(tt, errors.As(err, &bankxlive.ErrBadRequest{}))
	})

	t.Run("a large external transfer is flagged to the sender", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 500_000)
		f.gw.EXPECT().InitializePayment(gomock.Any(), gomock.Any()).Return(checkout, nil)
		f.ntf.EXPECT().Notify(a.AcctID, notifType(bankxlive.NotifyFraudAlert)).Return(true)

		res, err := f.svc.ExternalTransfer(ctx, bankxlive.ExternalTransferReq{
			AcctID:           a.AcctID,
			BankID:           "058",
			RecipientAccount: "0581234567",
			RecipientName:    "Tunde Bakare",
			Amount:           decimal.NewFromInt(200_000),
		})
		reqrd.NoError(err)
		as.True(res.FraudCheck.Suspicious)
		as.Equal(bankxlive.KindExternalTransfer, res.Transaction.Kind)
		as.Empty(res.Transaction.To)
	})
}

func TestSettlePayment(t *testing.T) {
	ctx := context.Background()
	checkout := &bankxlive.PaymentInit{AuthorizationURL: "https://checkout.paystack.com/x"}

	open := func(tt *testing.T, f *serviceFixture, acctID string, amount int64) *bankxlive.PaymentResult {
		f.gw.EXPECT().InitializePayment(gomock.Any(), gomock.Any()).Return(checkout, nil)
		res, err := f.svc.PurchaseAirtime(ctx, bankxlive.AirtimeReq{
			AcctID:      acctID,
			PhoneNumber: "08031234567",
			Provider:    "MTN",
			Amount:      decimal.NewFromInt(amount),
		})
		require.NoError(tt, err)
		return res
	}

	t.Run("a successful payment debits the account once and completes the entry", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 1000)
		res := open(tt, f, a.AcctID, 200)
		f.gw.EXPECT().
			VerifyPayment(gomock.Any(), res.Reference).
			Return(&bankxlive.PaymentVerification{Reference: res.Reference, Status: bankxlive.PaymentSuccess, Amount: decimal.NewFromInt(200)}, nil).
			Times(1)
		f.ntf.EXPECT().Notify(a.AcctID, notifType(bankxlive.NotifyTransaction)).Return(true).Times(1)

		txn, err := f.svc.SettlePayment(ctx, bankxlive.SettlementReq{Reference: res.Reference})
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusCompleted, txn.Status)
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(800)))

		again, err := f.svc.SettlePayment(ctx, bankxlive.SettlementReq{Reference: res.Reference})
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusCompleted, again.Status)
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(800)))
	})

	t.Run("a failed payment fails the entry and keeps the balance", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 1000)
		res := open(tt, f, a.AcctID, 200)
		f.gw.EXPECT().
			VerifyPayment(gomock.Any(), res.Reference).
			Return(&bankxlive.PaymentVerification{Status: bankxlive.PaymentAbandoned}, nil)
		f.ntf.EXPECT().Notify(a.AcctID, gomock.Any()).Return(false)

		txn, err := f.svc.SettlePayment(ctx, bankxlive.SettlementReq{Reference: res.Reference})
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusFailed, txn.Status)
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(1000)))
	})

	t.Run("an in-flight payment stays pending", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 1000)
		res := open(tt, f, a.AcctID, 200)
		f.gw.EXPECT().
			VerifyPayment(gomock.Any(), res.Reference).
			Return(&bankxlive.PaymentVerification{Status: "ongoing"}, nil)

		txn, err := f.svc.SettlePayment(ctx, bankxlive.SettlementReq{Reference: res.Reference})
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusPending, txn.Status)
	})

	t.Run("a balance spent before settlement fails the entry", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 300)
		res := open(tt, f, a.AcctID, 200)
		_, err := f.store.Accounts.AdjustBalance(a.AcctID, decimal.NewFromInt(-250))
		reqrd.NoError(err)
		f.gw.EXPECT().
			VerifyPayment(gomock.Any(), res.Reference).
			Return(&bankxlive.PaymentVerification{Status: bankxlive.PaymentSuccess, Amount: decimal.NewFromInt(200)}, nil)
		f.ntf.EXPECT().Notify(a.AcctID, gomock.Any()).Return(true)

		txn, err := f.svc.SettlePayment(ctx, bankxlive.SettlementReq{Reference: res.Reference})
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusFailed, txn.Status)
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(50)))
	})

	t.Run("a verified amount that differs from the entry fails it", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 1000)
		res := open(tt, f, a.AcctID, 200)
		f.gw.EXPECT().
			VerifyPayment(gomock.Any(), res.Reference).
			Return(&bankxlive.PaymentVerification{Status: bankxlive.PaymentSuccess, Amount: decimal.NewFromInt(2)}, nil)
		f.ntf.EXPECT().Notify(a.AcctID, gomock.Any()).Return(true)

		txn, err := f.svc.SettlePayment(ctx, bankxlive.SettlementReq{Reference: res.Reference})
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusFailed, txn.Status)
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(1000)))
	})

	t.Run("a success without a verified amount fails the entry", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 1000)
		res := open(tt, f, a.AcctID, 200)
		f.gw.EXPECT().
			VerifyPayment(gomock.Any(), res.Reference).
			Return(&bankxlive.PaymentVerification{Status: bankxlive.PaymentSuccess}, nil)
		f.ntf.EXPECT().Notify(a.AcctID, gomock.Any()).Return(true)

		txn, err := f.svc.SettlePayment(ctx, bankxlive.SettlementReq{Reference: res.Reference})
		reqrd.NoError(err)
		as.Equal(bankxlive.StatusFailed, txn.Status)
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(1000)))
	})

	t.Run("concurrent deliveries settle once", func(tt *testing.T) {
		as := assert.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 1000)
		res := open(tt, f, a.AcctID, 200)
		f.gw.EXPECT().
			VerifyPayment(gomock.Any(), res.Reference).
			Return(&bankxlive.PaymentVerification{Status: bankxlive.PaymentSuccess, Amount: decimal.NewFromInt(200)}, nil).
			AnyTimes()
		f.ntf.EXPECT().Notify(a.AcctID, gomock.Any()).Return(true).Times(1)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.SettlePayment(ctx, bankxlive.SettlementReq{Reference: res.Reference})
				as.NoError(err)
			}()
		}
		wg.Wait()
		as.True(f.balance(tt, a.AcctID).Equal(decimal.NewFromInt(800)))
	})

	t.Run("an unknown reference is not found", func(tt *testing.T) {
		f := newServiceFixture(tt)
		_, err := f.svc.SettlePayment(ctx, bankxlive.SettlementReq{Reference: "AT-NOPE"})
		assert.True(tt, errors.As(err, &bankxlive.ErrNotFound{}))
	})
}

func TestInsights(t *testing.T) {
	ctx := context.Background()

	t.Run("spending above 70 percent of the balance raises a budget alert", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 1000)
		b := fundedAccount(tt, f.store, "bola", 0)
		f.ntf.EXPECT().Notify(b.AcctID, gomock.Any()).Return(true)
		_, err := f.svc.Transfer(ctx, bankxlive.TransferReq{From: a.AcctID, To: b.AcctID, Amount: decimal.NewFromInt(900)})
		reqrd.NoError(err)
		f.ntf.EXPECT().Notify(a.AcctID, notifType(bankxlive.NotifyBudgetAlert)).Return(true).Times(1)

		ins, err := f.svc.Insights(ctx, bankxlive.AccountReq{AcctID: a.AcctID})
		reqrd.NoError(err)
		as.True(ins.BudgetExceeded)
		as.True(ins.TotalSpent.Equal(decimal.NewFromInt(900)))
		as.True(ins.MonthlyLimit.Equal(decimal.NewFromInt(70)))
		as.True(ins.RemainingBudget.Equal(decimal.NewFromInt(-830)))
		as.True(ins.SpendingByType[bankxlive.KindTransfer].Equal(decimal.NewFromInt(900)))
		as.Len(ins.Trend, 1)
	})

	t.Run("incoming and pending entries are not spending", func(tt *testing.T) {
		as := assert.New(tt)
		acct := bankxlive.Account{AcctID: "0350000001", Balance: decimal.NewFromInt(1000)}
		ins := bankxlive.AnalyzeSpending(acct, []bankxlive.Transaction{
			{From: "0350000002", To: acct.AcctID, Amount: decimal.NewFromInt(500), Kind: bankxlive.KindTransfer, Status: bankxlive.StatusCompleted},
			{From: acct.AcctID, Amount: decimal.NewFromInt(100), Kind: bankxlive.KindBillPayment, Status: bankxlive.StatusPending},
			{From: acct.AcctID, Amount: decimal.NewFromInt(50), Kind: bankxlive.KindAirtimePurchase, Status: bankxlive.StatusCompleted},
		})
		as.True(ins.TotalSpent.Equal(decimal.NewFromInt(50)))
		as.False(ins.BudgetExceeded)
		as.True(ins.MonthlyLimit.Equal(decimal.NewFromInt(700)))
		as.NotContains(ins.SpendingByType, bankxlive.KindBillPayment)
	})
}

func TestStatement(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	f := newServiceFixture(t)
	a := fundedAccount(t, f.store, "ada", 1000)
	b := fundedAccount(t, f.store, "bola", 0)
	f.ntf.EXPECT().Notify(b.AcctID, gomock.Any()).Return(true)
	_, err := f.svc.Transfer(context.Background(), bankxlive.TransferReq{From: a.AcctID, To: b.AcctID, Amount: decimal.NewFromInt(10)})
	reqrd.NoError(err)

	buf := new(bytes.Buffer)
	reqrd.NoError(f.svc.Statement(context.Background(), buf, bankxlive.AccountReq{AcctID: a.AcctID}))
	as.True(bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	err = f.svc.Statement(context.Background(), new(bytes.Buffer), bankxlive.AccountReq{AcctID: "0350000000"})
	as.True(errors.As(err, &bankxlive.ErrNotFound{}))
}

func TestCreateAccount(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	f := newServiceFixture(t)

	acct, err := f.svc.CreateAccount(context.Background(), bankxlive.CreateAccountReq{
		Username: "ada",
		Password: "s3cret-pass",
		FullName: "Ada Obi",
	})
	reqrd.NoError(err)
	as.NotEqual("s3cret-pass", acct.Password)
	as.Equal(bankxlive.RoleUser, acct.Role)
	as.True(acct.Balance.Equal(bankxlive.DefaultOpeningBalance))

	_, err = f.svc.CreateAccount(context.Background(), bankxlive.CreateAccountReq{Username: "ada", Password: "another"})
	as.True(errors.As(err, &bankxlive.ErrConflict{}))
}

func TestIssueCard(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies the holder and lists the card masked", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 100)
		f.ntf.EXPECT().Notify(a.AcctID, notifType(bankxlive.NotifyVirtualCard)).Return(true).Times(1)

		card, err := f.svc.IssueCard(ctx, bankxlive.AccountReq{AcctID: a.AcctID})
		reqrd.NoError(err)
		as.NotEmpty(card.CVV)

		cards, err := f.svc.Cards(ctx, bankxlive.AccountReq{AcctID: a.AcctID})
		reqrd.NoError(err)
		reqrd.Len(cards, 1)
		as.Equal(bankxlive.MaskCardNumber(card.CardNumber), cards[0].CardNumber)
		as.Empty(cards[0].CVV)
	})

	t.Run("refuses a second active card", func(tt *testing.T) {
		as := assert.New(tt)
		f := newServiceFixture(tt)
		a := fundedAccount(tt, f.store, "ada", 100)
		f.ntf.EXPECT().Notify(a.AcctID, gomock.Any()).Return(false).Times(1)

		_, err := f.svc.IssueCard(ctx, bankxlive.AccountReq{AcctID: a.AcctID})
		as.NoError(err)
		_, err = f.svc.IssueCard(ctx, bankxlive.AccountReq{AcctID: a.AcctID})
		as.ErrorAs(err, &bankxlive.ErrConflict{})
	})

	t.Run("needs an existing account", func(tt *testing.T) {
		f := newServiceFixture(tt)
		_, err := f.svc.IssueCard(ctx, bankxlive.AccountReq{AcctID: "0359999999"})
		assert.ErrorAs(tt, err, &bankxlive.ErrNotFound{})
	})
}

func TestReviewKYC(t *testing.T) {
	ctx := context.Background()
	as := assert.New(t)
	reqrd := require.New(t)
	f := newServiceFixture(t)
	a := fundedAccount(t, f.store, "ada", 100)

	doc, err := f.svc.SubmitKYC(ctx, bankxlive.KYCSubmitReq{
		AcctID:         a.AcctID,
		DocumentType:   bankxlive.DocNationalID,
		DocumentNumber: "12345678901",
		DocumentImage:  []byte("png-bytes"),
		ContentType:    "image/png",
	})
	reqrd.NoError(err)
	as.Equal(bankxlive.KYCPending, doc.Status)
	as.Equal("cG5nLWJ5dGVz", doc.DocumentImage)

	pending, err := f.svc.PendingKYC(ctx, bankxlive.AdminReq{})
	reqrd.NoError(err)
	as.Len(pending, 1)

	got, err := f.svc.ReviewKYC(ctx, bankxlive.KYCReviewReq{DocID: doc.ID, Status: bankxlive.KYCApproved})
	reqrd.NoError(err)
	as.Equal(bankxlive.KYCApproved, got.Status)
	acct, err := f.store.Accounts.Get(a.AcctID)
	reqrd.NoError(err)
	as.True(acct.KYCVerified)

	_, err = f.svc.ReviewKYC(ctx, bankxlive.KYCReviewReq{DocID: doc.ID, Status: bankxlive.KYCRejected, Reason: "late"})
	as.True(errors.As(err, &bankxlive.ErrConflict{}))
}

func TestBroadcast(t *testing.T) {
	as := assert.New(t)
	reqrd := require.New(t)
	f := newServiceFixture(t)
	f.ntf.EXPECT().
		Broadcast(notifType(bankxlive.NotifyTransaction)).
		Return(3)

	n, err := f.svc.Broadcast(context.Background(), bankxlive.BroadcastReq{Title: "Maintenance", Message: "Tonight 11pm"})
	reqrd.NoError(err)
	as.Equal(3, n)
}
