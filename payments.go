package bankxlive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ExternalBank struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

var supportedBanks = []ExternalBank{
	{ID: "gtbank", Name: "Guaranty Trust Bank", Code: "058"},
	{ID: "opay", Name: "OPay", Code: "100"},
	{ID: "kuda", Name: "Kuda Bank", Code: "090267"},
	{ID: "palmpay", Name: "Palmpay", Code: "100033"},
}

func SupportedBanks() []ExternalBank {
	out := make([]ExternalBank, len(supportedBanks))
	copy(out, supportedBanks)
	return out
}

// FindBank matches either the bank id or its code.
func FindBank(idOrCode string) (ExternalBank, bool) {
	for _, b := range supportedBanks {
		if b.ID == idOrCode || b.Code == idOrCode {
			return b, true
		}
	}
	return ExternalBank{}, false
}

type pendingPayment struct {
	acctID string
	amount decimal.Decimal
	kind   Kind
	prefix string
	meta   map[string]string
}

func (s *serviceImpl) PayBill(ctx context.Context, req BillPaymentReq) (*PaymentResult, error) {
	return s.initiate(ctx, pendingPayment{
		acctID: req.AcctID,
		amount: req.Amount,
		kind:   KindBillPayment,
		prefix: "BP",
		meta: map[string]string{
			"billType":   req.BillType,
			"billNumber": req.BillNumber,
		},
	})
}

func (s *serviceImpl) PurchaseAirtime(ctx context.Context, req AirtimeReq) (*PaymentResult, error) {
	return s.initiate(ctx, pendingPayment{
		acctID: req.AcctID,
		amount: req.Amount,
		kind:   KindAirtimePurchase,
		prefix: "AT",
		meta: map[string]string{
			"phoneNumber": req.PhoneNumber,
			"provider":    req.Provider,
		},
	})
}

func (s *serviceImpl) ExternalTransfer(ctx context.Context, req ExternalTransferReq) (*PaymentResult, error) {
	bank, ok := FindBank(req.BankID)
	if !ok {
		return nil, ErrBadRequest{Fields: map[string]string{"bankId": "unsupported bank"}}
	}
	meta := map[string]string{
		"bankId":        bank.ID,
		"bankCode":      bank.Code,
		"bankName":      bank.Name,
		"accountNumber": req.RecipientAccount,
		"accountName":   req.RecipientName,
	}
	if req.Narration != "" {
		meta["narration"] = req.Narration
	}
	return s.initiate(ctx, pendingPayment{
		acctID: req.AcctID,
		amount: req.Amount,
		kind:   KindExternalTransfer,
		prefix: "ET",
		meta:   meta,
	})
}

// initiate opens a provider checkout and records a pending ledger entry. The
// balance is only pre-checked here; SettlePayment debits it once the provider
// confirms the payment.
func (s *serviceImpl) initiate(ctx context.Context, p pendingPayment) (*PaymentResult, error) {
	if !p.amount.IsPositive() {
		return nil, ErrInvalidTransfer{Reason: "amount must be greater than zero"}
	}
	acct, err := s.store.Accounts.Get(p.acctID)
	if err != nil {
		return nil, err
	}
	if acct.Balance.LessThan(p.amount) {
		return nil, ErrInsufficientFunds{AcctID: acct.AcctID, Balance: acct.Balance, Requested: p.amount}
	}

	ref := s.newRef(p.prefix)
	meta, err := json.Marshal(p.meta)
	if err != nil {
		return nil, err
	}
	gwMeta := make(map[string]string, len(p.meta)+2)
	for k, v := range p.meta {
		gwMeta[k] = v
	}
	gwMeta["accountNumber"] = acct.AcctID
	gwMeta["type"] = string(p.kind)

	checkout, err := s.gw.InitializePayment(ctx, PaymentReq{
		Amount:      p.amount,
		Email:       customerEmail(acct),
		Reference:   ref,
		CallbackURL: s.callbackURL,
		Metadata:    gwMeta,
	})
	if err != nil {
		s.log.Err(err).
			Str("method", string(p.kind)).
			Str("acctID", acct.AcctID).
			Str("reference", ref).
			Msg("error initializing payment")
		return nil, err
	}

	txn, err := s.store.Ledger.Append(Transaction{
		From:      acct.AcctID,
		Amount:    p.amount,
		Kind:      p.kind,
		Status:    StatusPending,
		Reference: ref,
		Metadata:  meta,
	})
	if err != nil {
		return nil, err
	}
	check := s.fraud.Evaluate(*txn, *acct)
	if check.Suspicious {
		s.ntf.Notify(acct.AcctID, fraudAlert(check))
	}
	s.record(ctx, []Transaction{*txn})

	return &PaymentResult{
		Transaction:      *txn,
		AuthorizationURL: checkout.AuthorizationURL,
		Reference:        ref,
		FraudCheck:       check,
	}, nil
}

// SettlePayment applies the provider's verdict for a pending entry. Entries
// that are already settled come back unchanged, so webhook redelivery is safe.
func (s *serviceImpl) SettlePayment(ctx context.Context, req SettlementReq) (*Transaction, error) {
	txn, err := s.store.Ledger.ByReference(req.Reference)
	if err != nil {
		return nil, err
	}
	if txn.Status.Terminal() {
		return txn, nil
	}

	ver, err := s.gw.VerifyPayment(ctx, req.Reference)
	if err != nil {
		s.log.Err(err).Str("method", "settlePayment").Str("reference", req.Reference).Msg("error verifying payment")
		return nil, err
	}
	next := settlementStatus(ver.Status)
	if next == StatusCompleted && !ver.Amount.Equal(txn.Amount) {
		s.log.Warn().
			Str("reference", req.Reference).
			Str("expected", txn.Amount.String()).
			Str("verified", ver.Amount.String()).
			Msg("verified amount does not match ledger entry")
		next = StatusFailed
	}
	if next == StatusPending {
		return txn, nil
	}

	s.settleMu.Lock()
	settled, acct, changed, err := s.settle(txn.ID, next)
	s.settleMu.Unlock()
	if err != nil {
		return nil, err
	}
	if !changed {
		return settled, nil
	}

	s.ntf.Notify(settled.From, settlementNotice(settled))
	if acct != nil {
		s.record(ctx, []Transaction{*settled}, *acct)
	} else {
		s.record(ctx, []Transaction{*settled})
	}
	return settled, nil
}

// settle must be called with settleMu held.
func (s *serviceImpl) settle(id snowflake.ID, next Status) (*Transaction, *Account, bool, error) {
	cur, err := s.store.Ledger.Get(id)
	if err != nil {
		return nil, nil, false, err
	}
	if cur.Status.Terminal() {
		return cur, nil, false, nil
	}

	var acct *Account
	if next == StatusCompleted && cur.From != "" {
		acct, err = s.store.Accounts.AdjustBalance(cur.From, cur.Amount.Neg())
		if err != nil {
			if !errors.As(err, &ErrInsufficientFunds{}) {
				return nil, nil, false, err
			}
			s.log.Warn().
				Str("reference", cur.Reference).
				Str("acctID", cur.From).
				Msg("insufficient funds at settlement, marking payment failed")
			next = StatusFailed
		}
	}
	done, err := s.store.Ledger.SetStatus(id, next)
	if err != nil {
		if acct != nil {
			s.reverse(cur.From, cur.Amount)
		}
		return nil, nil, false, err
	}
	return done, acct, true, nil
}

func settlementStatus(providerStatus string) Status {
	switch providerStatus {
	case PaymentSuccess:
		return StatusCompleted
	case PaymentFailed, PaymentAbandoned, PaymentReversed:
		return StatusFailed
	}
	return StatusPending
}

func settlementNotice(txn *Transaction) Notification {
	label := map[Kind]string{
		KindBillPayment:      "Bill payment",
		KindAirtimePurchase:  "Airtime purchase",
		KindExternalTransfer: "External transfer",
	}[txn.Kind]
	if label == "" {
		label = "Payment"
	}
	if txn.Status == StatusCompleted {
		return Notification{
			Type:    NotifyTransaction,
			Title:   label + " Successful",
			Message: fmt.Sprintf("%s of %s completed (ref %s)", label, formatNaira(txn.Amount), txn.Reference),
		}
	}
	return Notification{
		Type:    NotifyTransaction,
		Title:   label + " Failed",
		Message: fmt.Sprintf("%s of %s failed (ref %s)", label, formatNaira(txn.Amount), txn.Reference),
	}
}

func customerEmail(a *Account) string {
	if a.Email != "" {
		return a.Email
	}
	return a.AcctID + "@customers.bankxlive.ng"
}
