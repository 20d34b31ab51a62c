package bankxlive

import (
	"context"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"
)

var (
	_ Service = (*validationMiddleware)(nil)
	_ Service = (*limitMiddleware)(nil)

	phoneRE    = regexp.MustCompile(`^\+?\d{10,14}$`)
	usernameRE = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

	allowedImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
	}
)

const minPasswordLen = 6

type Middleware func(Service) Service

// Chain wraps svc so the first middleware is the outermost.
func Chain(svc Service, mws ...Middleware) Service {
	for i := len(mws) - 1; i >= 0; i-- {
		svc = mws[i](svc)
	}
	return svc
}

type accountReader interface {
	Get(id string) (*Account, error)
}

// validationMiddleware checks request shape and who may act on which account
// before anything reaches the core.
type validationMiddleware struct {
	next  Service
	accts accountReader
}

func NewValidationMiddleware(accts accountReader) Middleware {
	return func(svc Service) Service {
		return &validationMiddleware{
			next:  svc,
			accts: accts,
		}
	}
}

func authorizeOwner(actor Actor, acctID string) error {
	if actor.AcctID == "" {
		return ErrUnauthorized{Reason: "no authenticated account"}
	}
	if !ValidAccountNumber(acctID) {
		return ErrBadRequest{Fields: map[string]string{"acctID": "invalid format"}}
	}
	if actor.IsAdmin() || actor.AcctID == acctID {
		return nil
	}
	return ErrForbidden{Reason: "not the account owner"}
}

func authorizeAdmin(actor Actor) error {
	if actor.AcctID == "" {
		return ErrUnauthorized{Reason: "no authenticated account"}
	}
	if !actor.IsAdmin() {
		return ErrForbidden{Reason: "admin access required"}
	}
	return nil
}

func checkAmount(fields map[string]string, amt decimal.Decimal) {
	if !amt.Equal(amt.Round(2)) {
		fields["amount"] = "at most 2 decimal places"
	}
}

func required(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = "required"
	}
}

func fieldErr(fields map[string]string) error {
	if len(fields) > 0 {
		return ErrBadRequest{Fields: fields}
	}
	return nil
}

func (v *validationMiddleware) CreateAccount(ctx context.Context, req CreateAccountReq) (*Account, error) {
	fields := map[string]string{}
	if !usernameRE.MatchString(req.Username) {
		fields["username"] = "3-32 letters, digits, dot, dash or underscore"
	}
	if len(req.Password) < minPasswordLen {
		fields["password"] = "at least 6 characters"
	}
	required(fields, "fullName", req.FullName)
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		fields["email"] = "invalid format"
	}
	if req.Phone != "" && !phoneRE.MatchString(req.Phone) {
		fields["phone"] = "invalid format"
	}
	if err := fieldErr(fields); err != nil {
		return nil, err
	}
	return v.next.CreateAccount(ctx, req)
}

func (v *validationMiddleware) Account(ctx context.Context, req AccountReq) (*Account, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	return v.next.Account(ctx, req)
}

func (v *validationMiddleware) Balance(ctx context.Context, req AccountReq) (*decimal.Decimal, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	return v.next.Balance(ctx, req)
}

func (v *validationMiddleware) Transactions(ctx context.Context, req TransactionsReq) ([]Transaction, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	return v.next.Transactions(ctx, req)
}

func (v *validationMiddleware) Transfer(ctx context.Context, req TransferReq) (*TransferResult, error) {
	if err := authorizeOwner(req.Actor, req.From); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if !ValidAccountNumber(req.To) {
		fields["toAccountNumber"] = "must be 10 digits"
	}
	checkAmount(fields, req.Amount)
	if err := fieldErr(fields); err != nil {
		return nil, err
	}
	return v.next.Transfer(ctx, req)
}

func (v *validationMiddleware) PayBill(ctx context.Context, req BillPaymentReq) (*PaymentResult, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	required(fields, "billType", req.BillType)
	required(fields, "billNumber", req.BillNumber)
	checkAmount(fields, req.Amount)
	if err := fieldErr(fields); err != nil {
		return nil, err
	}
	acct, err := v.accts.Get(req.AcctID)
	if err != nil {
		return nil, err
	}
	if !acct.KYCVerified {
		return nil, ErrForbidden{Reason: "kyc verification required"}
	}
	return v.next.PayBill(ctx, req)
}

func (v *validationMiddleware) PurchaseAirtime(ctx context.Context, req AirtimeReq) (*PaymentResult, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if !phoneRE.MatchString(req.PhoneNumber) {
		fields["phoneNumber"] = "invalid format"
	}
	required(fields, "provider", req.Provider)
	checkAmount(fields, req.Amount)
	if err := fieldErr(fields); err != nil {
		return nil, err
	}
	return v.next.PurchaseAirtime(ctx, req)
}

func (v *validationMiddleware) ExternalTransfer(ctx context.Context, req ExternalTransferReq) (*PaymentResult, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if _, ok := FindBank(req.BankID); !ok {
		fields["bankId"] = "unsupported bank"
	}
	if !ValidAccountNumber(req.RecipientAccount) {
		fields["accountNumber"] = "must be 10 digits"
	}
	required(fields, "accountName", req.RecipientName)
	checkAmount(fields, req.Amount)
	if err := fieldErr(fields); err != nil {
		return nil, err
	}
	return v.next.ExternalTransfer(ctx, req)
}

func (v *validationMiddleware) SettlePayment(ctx context.Context, req SettlementReq) (*Transaction, error) {
	fields := map[string]string{}
	required(fields, "reference", req.Reference)
	if err := fieldErr(fields); err != nil {
		return nil, err
	}
	return v.next.SettlePayment(ctx, req)
}

func (v *validationMiddleware) Statement(ctx context.Context, w io.Writer, req AccountReq) error {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return err
	}
	return v.next.Statement(ctx, w, req)
}

func (v *validationMiddleware) Insights(ctx context.Context, req AccountReq) (*Insights, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	return v.next.Insights(ctx, req)
}

func (v *validationMiddleware) IssueCard(ctx context.Context, req AccountReq) (*VirtualCard, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	return v.next.IssueCard(ctx, req)
}

func (v *validationMiddleware) Cards(ctx context.Context, req AccountReq) ([]VirtualCard, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	return v.next.Cards(ctx, req)
}

func (v *validationMiddleware) SubmitKYC(ctx context.Context, req KYCSubmitReq) (*KYCDocument, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if !req.DocumentType.Valid() {
		fields["documentType"] = "must be passport, driver_license or national_id"
	}
	required(fields, "documentNumber", req.DocumentNumber)
	switch {
	case len(req.DocumentImage) == 0:
		fields["documentImage"] = "required"
	case len(req.DocumentImage) > MaxDocumentImgLen:
		fields["documentImage"] = "larger than 5MB"
	case !allowedImageTypes[req.ContentType]:
		fields["documentImage"] = "must be a JPEG or PNG image"
	}
	if err := fieldErr(fields); err != nil {
		return nil, err
	}
	return v.next.SubmitKYC(ctx, req)
}

func (v *validationMiddleware) KYCDocuments(ctx context.Context, req AccountReq) ([]KYCDocument, error) {
	if err := authorizeOwner(req.Actor, req.AcctID); err != nil {
		return nil, err
	}
	return v.next.KYCDocuments(ctx, req)
}

func (v *validationMiddleware) PendingKYC(ctx context.Context, req AdminReq) ([]KYCDocument, error) {
	if err := authorizeAdmin(req.Actor); err != nil {
		return nil, err
	}
	return v.next.PendingKYC(ctx, req)
}

func (v *validationMiddleware) ReviewKYC(ctx context.Context, req KYCReviewReq) (*KYCDocument, error) {
	if err := authorizeAdmin(req.Actor); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	switch req.Status {
	case KYCApproved:
	case KYCRejected:
		required(fields, "reason", req.Reason)
	default:
		fields["status"] = "must be approved or rejected"
	}
	if err := fieldErr(fields); err != nil {
		return nil, err
	}
	return v.next.ReviewKYC(ctx, req)
}

func (v *validationMiddleware) AllTransactions(ctx context.Context, req AdminReq) ([]Transaction, error) {
	if err := authorizeAdmin(req.Actor); err != nil {
		return nil, err
	}
	return v.next.AllTransactions(ctx, req)
}

func (v *validationMiddleware) Broadcast(ctx context.Context, req BroadcastReq) (int, error) {
	if err := authorizeAdmin(req.Actor); err != nil {
		return 0, err
	}
	fields := map[string]string{}
	required(fields, "title", req.Title)
	required(fields, "message", req.Message)
	switch req.Type {
	case "", NotifyTransaction, NotifyFraudAlert, NotifyBudgetAlert, NotifyVirtualCard:
	default:
		fields["type"] = "unknown notification type"
	}
	if err := fieldErr(fields); err != nil {
		return 0, err
	}
	return v.next.Broadcast(ctx, req)
}

//
// Rate limiting middlewares
//

// limitMiddleware sheds load by bounding the in-flight requests of the heavy
// operations with weighted semaphores. A request that cannot get a token
// within AcquireTimeout fails with ErrServiceBusy.
type limitMiddleware struct {
	next   Service
	limits *ServiceLimits
}

type ServiceLimits struct {
	Transfer       *semaphore.Weighted
	Payment        *semaphore.Weighted
	Statement      *semaphore.Weighted
	AcquireTimeout time.Duration
}

func NewServiceLimits(transfer, payment, statement int64, acquireTimeout time.Duration) *ServiceLimits {
	return &ServiceLimits{
		Transfer:       semaphore.NewWeighted(transfer),
		Payment:        semaphore.NewWeighted(payment),
		Statement:      semaphore.NewWeighted(statement),
		AcquireTimeout: acquireTimeout,
	}
}

func NewLimitMiddleware(limits *ServiceLimits) Middleware {
	return func(next Service) Service {
		return &limitMiddleware{
			next:   next,
			limits: limits,
		}
	}
}

func (l *limitMiddleware) acquire(ctx context.Context, sem *semaphore.Weighted) (func(), error) {
	if sem == nil {
		return func() {}, nil
	}
	actx, cancel := context.WithTimeout(ctx, l.limits.AcquireTimeout)
	defer cancel()
	if err := sem.Acquire(actx, 1); err != nil {
		return nil, ErrServiceBusy
	}
	return func() { sem.Release(1) }, nil
}

func (l *limitMiddleware) CreateAccount(ctx context.Context, req CreateAccountReq) (*Account, error) {
	return l.next.CreateAccount(ctx, req)
}

func (l *limitMiddleware) Account(ctx context.Context, req AccountReq) (*Account, error) {
	return l.next.Account(ctx, req)
}

func (l *limitMiddleware) Balance(ctx context.Context, req AccountReq) (*decimal.Decimal, error) {
	return l.next.Balance(ctx, req)
}

func (l *limitMiddleware) Transactions(ctx context.Context, req TransactionsReq) ([]Transaction, error) {
	return l.next.Transactions(ctx, req)
}

func (l *limitMiddleware) Transfer(ctx context.Context, req TransferReq) (*TransferResult, error) {
	release, err := l.acquire(ctx, l.limits.Transfer)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Transfer(ctx, req)
}

func (l *limitMiddleware) PayBill(ctx context.Context, req BillPaymentReq) (*PaymentResult, error) {
	release, err := l.acquire(ctx, l.limits.Payment)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.PayBill(ctx, req)
}

func (l *limitMiddleware) PurchaseAirtime(ctx context.Context, req AirtimeReq) (*PaymentResult, error) {
	release, err := l.acquire(ctx, l.limits.Payment)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.PurchaseAirtime(ctx, req)
}

func (l *limitMiddleware) ExternalTransfer(ctx context.Context, req ExternalTransferReq) (*PaymentResult, error) {
	release, err := l.acquire(ctx, l.limits.Payment)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.ExternalTransfer(ctx, req)
}

func (l *limitMiddleware) SettlePayment(ctx context.Context, req SettlementReq) (*Transaction, error) {
	release, err := l.acquire(ctx, l.limits.Payment)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.SettlePayment(ctx, req)
}

func (l *limitMiddleware) Statement(ctx context.Context, w io.Writer, req AccountReq) error {
	release, err := l.acquire(ctx, l.limits.Statement)
	if err != nil {
		return err
	}
	defer release()
	return l.next.Statement(ctx, w, req)
}

func (l *limitMiddleware) Insights(ctx context.Context, req AccountReq) (*Insights, error) {
	release, err := l.acquire(ctx, l.limits.Statement)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.next.Insights(ctx, req)
}

func (l *limitMiddleware) IssueCard(ctx context.Context, req AccountReq) (*VirtualCard, error) {
	return l.next.IssueCard(ctx, req)
}

func (l *limitMiddleware) Cards(ctx context.Context, req AccountReq) ([]VirtualCard, error) {
	return l.next.Cards(ctx, req)
}

func (l *limitMiddleware) SubmitKYC(ctx context.Context, req KYCSubmitReq) (*KYCDocument, error) {
	return l.next.SubmitKYC(ctx, req)
}

func (l *limitMiddleware) KYCDocuments(ctx context.Context, req AccountReq) ([]KYCDocument, error) {
	return l.next.KYCDocuments(ctx, req)
}

func (l *limitMiddleware) PendingKYC(ctx context.Context, req AdminReq) ([]KYCDocument, error) {
	return l.next.PendingKYC(ctx, req)
}

func (l *limitMiddleware) ReviewKYC(ctx context.Context, req KYCReviewReq) (*KYCDocument, error) {
	return l.next.ReviewKYC(ctx, req)
}

func (l *limitMiddleware) AllTransactions(ctx context.Context, req AdminReq) ([]Transaction, error) {
	return l.next.AllTransactions(ctx, req)
}

func (l *limitMiddleware) Broadcast(ctx context.Context, req BroadcastReq) (int, error) {
	return l.next.Broadcast(ctx, req)
}
