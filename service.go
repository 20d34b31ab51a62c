package bankxlive

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type CreateAccountReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type AccountReq struct {
	Actor  Actor
	AcctID string
}

type TransactionsReq struct {
	Actor  Actor
	AcctID string
	Desc   bool
}

type TransferReq struct {
	Actor       Actor           `json:"-"`
	From        string          `json:"-"`
	To          string          `json:"toAccountNumber"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type BillPaymentReq struct {
	Actor      Actor           `json:"-"`
	AcctID     string          `json:"-"`
	BillType   string          `json:"billType"`
	BillNumber string          `json:"billNumber"`
	Amount     decimal.Decimal `json:"amount"`
}

type AirtimeReq struct {
	Actor       Actor           `json:"-"`
	AcctID      string          `json:"-"`
	PhoneNumber string          `json:"phoneNumber"`
	Provider    string          `json:"provider"`
	Amount      decimal.Decimal `json:"amount"`
}

type ExternalTransferReq struct {
	Actor            Actor           `json:"-"`
	AcctID           string          `json:"-"`
	BankID           string          `json:"bankId"`
	RecipientAccount string          `json:"accountNumber"`
	RecipientName    string          `json:"accountName"`
	Amount           decimal.Decimal `json:"amount"`
	Narration        string          `json:"narration,omitempty"`
}

type SettlementReq struct {
	Reference string
}

type KYCSubmitReq struct {
	Actor          Actor
	AcctID         string
	DocumentType   DocumentType
	DocumentNumber string
	DocumentImage  []byte
	ContentType    string
}

type KYCReviewReq struct {
	Actor  Actor        `json:"-"`
	DocID  snowflake.ID `json:"-"`
	Status KYCStatus    `json:"status"`
	Reason string       `json:"reason,omitempty"`
}

type AdminReq struct {
	Actor Actor
}

type BroadcastReq struct {
	Actor   Actor            `json:"-"`
	Type    NotificationType `json:"type,omitempty"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
}

type TransferResult struct {
	Transaction Transaction     `json:"transaction"`
	Balance     decimal.Decimal `json:"balance"`
	FraudCheck  FraudAssessment `json:"fraudCheck"`
}

type PaymentResult struct {
	Transaction      Transaction     `json:"transaction"`
	AuthorizationURL string          `json:"authorizationUrl"`
	Reference        string          `json:"reference"`
	FraudCheck       FraudAssessment `json:"fraudCheck"`
}

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks . Service

type Service interface {
	CreateAccount(ctx context.Context, req CreateAccountReq) (*Account, error)
	Account(ctx context.Context, req AccountReq) (*Account, error)
	Balance(ctx context.Context, req AccountReq) (*decimal.Decimal, error)
	Transactions(ctx context.Context, req TransactionsReq) ([]Transaction, error)
	Transfer(ctx context.Context, req TransferReq) (*TransferResult, error)
	PayBill(ctx context.Context, req BillPaymentReq) (*PaymentResult, error)
	PurchaseAirtime(ctx context.Context, req AirtimeReq) (*PaymentResult, error)
	ExternalTransfer(ctx context.Context, req ExternalTransferReq) (*PaymentResult, error)
	SettlePayment(ctx context.Context, req SettlementReq) (*Transaction, error)
	Statement(ctx context.Context, w io.Writer, req AccountReq) error
	Insights(ctx context.Context, req AccountReq) (*Insights, error)
	IssueCard(ctx context.Context, req AccountReq) (*VirtualCard, error)
	Cards(ctx context.Context, req AccountReq) ([]VirtualCard, error)
	SubmitKYC(ctx context.Context, req KYCSubmitReq) (*KYCDocument, error)
	KYCDocuments(ctx context.Context, req AccountReq) ([]KYCDocument, error)
	PendingKYC(ctx context.Context, req AdminReq) ([]KYCDocument, error)
	ReviewKYC(ctx context.Context, req KYCReviewReq) (*KYCDocument, error)
	AllTransactions(ctx context.Context, req AdminReq) ([]Transaction, error)
	Broadcast(ctx context.Context, req BroadcastReq) (int, error)
}

type Option func(*serviceImpl)

func WithFraudSignal(f *FraudSignal) Option {
	return func(s *serviceImpl) { s.fraud = f }
}

func WithJournal(j Journal) Option {
	return func(s *serviceImpl) { s.journal = j }
}

func WithHashCost(cost int) Option {
	return func(s *serviceImpl) { s.hashCost = cost }
}

func WithCallbackURL(u string) Option {
	return func(s *serviceImpl) { s.callbackURL = u }
}

func NewService(store *Store, gw Gateway, ntf Notifier, log *zerolog.Logger, opts ...Option) *serviceImpl {
	s := &serviceImpl{
		store:   store,
		gw:      gw,
		ntf:     ntf,
		log:     log,
		fraud:   NewFraudSignal(DefaultFraudThresholds()),
		journal: nopJournal{},
		newRef: func(prefix string) string {
			return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	_ Service = (*serviceImpl)(nil)
)

type serviceImpl struct {
	store       *Store
	gw          Gateway
	ntf         Notifier
	fraud       *FraudSignal
	journal     Journal
	log         *zerolog.Logger
	hashCost    int
	callbackURL string
	newRef      func(prefix string) string

	// settleMu makes the re-check, debit and status change of a settlement
	// one step with respect to other settlements.
	settleMu sync.Mutex
}

func (s *serviceImpl) CreateAccount(ctx context.Context, req CreateAccountReq) (*Account, error) {
	return s.createAccount(ctx, req, RoleUser)
}

// CreateAdmin registers an administrator account. It is only reachable from
// server bootstrap, never from the HTTP surface.
func (s *serviceImpl) CreateAdmin(ctx context.Context, req CreateAccountReq) (*Account, error) {
	return s.createAccount(ctx, req, RoleAdmin)
}

func (s *serviceImpl) createAccount(ctx context.Context, req CreateAccountReq, role Role) (*Account, error) {
	hash, err := HashPassword(req.Password, s.hashCost)
	if err != nil {
		s.log.Err(err).Str("method", "createAccount").Msg("error hashing password")
		return nil, ErrInternalServer
	}
	acct, err := s.store.Accounts.Create(NewAccount{
		Username: req.Username,
		Password: hash,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     role,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, nil, *acct)
	return acct, nil
}

func (s *serviceImpl) Account(ctx context.Context, req AccountReq) (*Account, error) {
	return s.store.Accounts.Get(req.AcctID)
}

func (s *serviceImpl) Balance(ctx context.Context, req AccountReq) (*decimal.Decimal, error) {
	acct, err := s.store.Accounts.Get(req.AcctID)
	if err != nil {
		return nil, err
	}
	return &acct.Balance, nil
}

func (s *serviceImpl) Transactions(ctx context.Context, req TransactionsReq) ([]Transaction, error) {
	order := OrderAsc
	if req.Desc {
		order = OrderDesc
	}
	if _, err := s.store.Accounts.Get(req.AcctID); err != nil {
		return nil, err
	}
	return s.store.Ledger.ByAccount(req.AcctID, order)
}

func (s *serviceImpl) AllTransactions(ctx context.Context, req AdminReq) ([]Transaction, error) {
	return s.store.Ledger.All(OrderDesc)
}

// Transfer moves req.Amount from req.From to req.To. A failure at any step
// leaves both balances as they were.
func (s *serviceImpl) Transfer(ctx context.Context, req TransferReq) (*TransferResult, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidTransfer{Reason: "amount must be greater than zero"}
	}
	if req.From == req.To {
		return nil, ErrInvalidTransfer{Reason: "cannot transfer to the same account"}
	}
	accts := s.store.Accounts
	if _, err := accts.Get(req.To); err != nil {
		if errors.As(err, &ErrNotFound{}) {
			return nil, ErrNotFound{Resource: "recipient", ID: req.To}
		}
		return nil, err
	}

	src, err := accts.AdjustBalance(req.From, req.Amount.Neg())
	if err != nil {
		return nil, err
	}
	dst, err := accts.AdjustBalance(req.To, req.Amount)
	if err != nil {
		s.reverse(req.From, req.Amount)
		return nil, err
	}

	rec := Transaction{
		From:   req.From,
		To:     req.To,
		Amount: req.Amount,
		Kind:   KindTransfer,
		Status: StatusCompleted,
	}
	if req.Description != "" {
		rec.Metadata, _ = json.Marshal(map[string]string{"description": req.Description})
	}
	txn, err := s.store.Ledger.Append(rec)
	if err != nil {
		s.reverse(req.To, req.Amount.Neg())
		s.reverse(req.From, req.Amount)
		return nil, err
	}

	check := s.fraud.Evaluate(*txn, *src)
	if check.Suspicious {
		s.ntf.Notify(req.From, fraudAlert(check))
	}
	s.ntf.Notify(req.To, Notification{
		Type:    NotifyTransaction,
		Title:   "Money Received",
		Message: fmt.Sprintf("You received %s from %s", formatNaira(req.Amount), senderName(src)),
	})
	s.record(ctx, []Transaction{*txn}, *src, *dst)

	return &TransferResult{
		Transaction: *txn,
		Balance:     src.Balance,
		FraudCheck:  check,
	}, nil
}

// reverse undoes one leg of a transfer that could not complete.
func (s *serviceImpl) reverse(acctID string, delta decimal.Decimal) {
	if _, err := s.store.Accounts.adjust(acctID, delta); err != nil {
		s.log.Error().
			Err(err).
			Str("acctID", acctID).
			Str("delta", delta.String()).
			Msg("error reversing balance change")
	}
}

// IssueCard returns the new card with its full number and CVV. That is the
// only response that carries them.
func (s *serviceImpl) IssueCard(ctx context.Context, req AccountReq) (*VirtualCard, error) {
	if _, err := s.store.Accounts.Get(req.AcctID); err != nil {
		return nil, err
	}
	card, err := s.store.Cards.Issue(req.AcctID)
	if err != nil {
		return nil, err
	}
	s.ntf.Notify(req.AcctID, Notification{
		Type:    NotifyVirtualCard,
		Title:   "Virtual Card Created",
		Message: "Your virtual card ending in " + card.CardNumber[len(card.CardNumber)-4:] + " is ready to use.",
	})
	return card, nil
}

func (s *serviceImpl) Cards(ctx context.Context, req AccountReq) ([]VirtualCard, error) {
	cards, err := s.store.Cards.ByAccount(req.AcctID)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		cards[i] = cards[i].Masked()
	}
	return cards, nil
}

func (s *serviceImpl) SubmitKYC(ctx context.Context, req KYCSubmitReq) (*KYCDocument, error) {
	if _, err := s.store.Accounts.Get(req.AcctID); err != nil {
		return nil, err
	}
	doc, err := s.store.KYC.Submit(KYCDocument{
		AcctID:         req.AcctID,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		DocumentImage:  base64.StdEncoding.EncodeToString(req.DocumentImage),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("acctID", req.AcctID).Str("docID", doc.ID.String()).Msg("kyc document submitted")
	return doc, nil
}

func (s *serviceImpl) KYCDocuments(ctx context.Context, req AccountReq) ([]KYCDocument, error) {
	return s.store.KYC.ByAccount(req.AcctID)
}

func (s *serviceImpl) PendingKYC(ctx context.Context, req AdminReq) ([]KYCDocument, error) {
	return s.store.KYC.Pending()
}

func (s *serviceImpl) ReviewKYC(ctx context.Context, req KYCReviewReq) (*KYCDocument, error) {
	doc, err := s.store.KYC.Review(req.DocID, req.Status, req.Reason)
	if err != nil {
		return nil, err
	}
	if doc.Status == KYCApproved {
		verified := true
		acct, err := s.store.Accounts.Update(doc.AcctID, AccountPatch{KYCVerified: &verified})
		if err != nil {
			s.log.Err(err).Str("method", "reviewKYC").Str("acctID", doc.AcctID).Msg("error marking account verified")
			return nil, err
		}
		s.record(ctx, nil, *acct)
	}
	s.log.Info().
		Str("docID", doc.ID.String()).
		Str("status", string(doc.Status)).
		Str("reviewer", req.Actor.AcctID).
		Msg("kyc document reviewed")
	return doc, nil
}

func (s *serviceImpl) Broadcast(ctx context.Context, req BroadcastReq) (int, error) {
	typ := req.Type
	if typ == "" {
		typ = NotifyTransaction
	}
	n := s.ntf.Broadcast(Notification{
		Type:    typ,
		Title:   req.Title,
		Message: req.Message,
	})
	s.log.Info().Int("recipients", n).Str("admin", req.Actor.AcctID).Msg("broadcast sent")
	return n, nil
}

// record mirrors state to the journal. Failures are logged, never returned.
func (s *serviceImpl) record(ctx context.Context, txns []Transaction, accts ...Account) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if len(accts) > 0 {
		if err := s.journal.RecordAccounts(ctx, accts...); err != nil {
			s.log.Err(err).Str("method", "journal").Msg("error recording accounts")
		}
	}
	if len(txns) > 0 {
		if err := s.journal.RecordTransactions(ctx, txns...); err != nil {
			s.log.Err(err).Str("method", "journal").Msg("error recording transactions")
		}
	}
}

func fraudAlert(check FraudAssessment) Notification {
	return Notification{
		Type:    NotifyFraudAlert,
		Title:   "Suspicious Activity Detected",
		Message: "Your recent transaction was flagged: " + strings.Join(check.Reasons, ", "),
	}
}

func formatNaira(d decimal.Decimal) string {
	return "NGN " + d.StringFixed(2)
}

func senderName(a *Account) string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.AcctID
}
