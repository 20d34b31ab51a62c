package bankxlive

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindTransfer         Kind = "transfer"
	KindBillPayment      Kind = "bill_payment"
	KindAirtimePurchase  Kind = "airtime_purchase"
	KindExternalTransfer Kind = "external_transfer"
)

func (k Kind) valid() bool {
	switch k {
	case KindTransfer, KindBillPayment, KindAirtimePurchase, KindExternalTransfer:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) valid() bool {
	return s == StatusPending || s.Terminal()
}

type Order int

const (
	OrderAsc Order = iota
	OrderDesc
)

// Transaction is one ledger entry. Only Status changes after Append.
type Transaction struct {
	ID        snowflake.ID    `json:"id"`
	From      string          `json:"fromAccountNumber,omitempty"`
	To        string          `json:"toAccountNumber,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Kind      Kind            `json:"type"`
	Status    Status          `json:"status"`
	Reference string          `json:"reference,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Involves reports whether acctID is the source or the destination.
func (t *Transaction) Involves(acctID string) bool {
	return acctID != "" && (t.From == acctID || t.To == acctID)
}

// Ledger is the append-only transaction record. Entries are kept in insertion
// order; IDs come from a snowflake node and are generated under the write
// lock, so they increase with insertion order.
type Ledger struct {
	mu     sync.RWMutex
	node   *snowflake.Node
	txns   []*Transaction
	byID   map[snowflake.ID]*Transaction
	byRef  map[string]*Transaction
	closed *atomic.Bool
	clock  func() time.Time
}

func newLedger(node *snowflake.Node, closed *atomic.Bool) *Ledger {
	return &Ledger{
		node:   node,
		byID:   make(map[snowflake.ID]*Transaction),
		byRef:  make(map[string]*Transaction),
		closed: closed,
		clock:  time.Now,
	}
}

// Append stores rec with a fresh ID and creation time. The caller chooses the
// initial status; there is no default.
func (l *Ledger) Append(rec Transaction) (*Transaction, error) {
	if l.closed.Load() {
		return nil, ErrStoreClosed
	}
	fields := map[string]string{}
	if !rec.Status.valid() {
		fields["status"] = "must be pending, completed or failed"
	}
	if !rec.Kind.valid() {
		fields["type"] = "unknown transaction type"
	}
	if !rec.Amount.IsPositive() {
		fields["amount"] = "must be greater than zero"
	}
	if rec.From == "" && rec.To == "" {
		fields["account"] = "source or destination required"
	}
	if len(fields) > 0 {
		return nil, ErrBadRequest{Fields: fields}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if rec.Reference != "" {
		if _, dup := l.byRef[rec.Reference]; dup {
			return nil, ErrConflict{Resource: "reference", Key: rec.Reference}
		}
	}
	txn := rec
	txn.ID = l.node.Generate()
	txn.CreatedAt = l.clock().UTC()
	l.txns = append(l.txns, &txn)
	l.byID[txn.ID] = &txn
	if txn.Reference != "" {
		l.byRef[txn.Reference] = &txn
	}
	cp := txn
	return &cp, nil
}

func (l *Ledger) Get(id snowflake.ID) (*Transaction, error) {
	if l.closed.Load() {
		return nil, ErrStoreClosed
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	txn, ok := l.byID[id]
	if !ok {
		return nil, ErrNotFound{Resource: "transaction", ID: id.String()}
	}
	cp := *txn
	return &cp, nil
}

func (l *Ledger) ByReference(ref string) (*Transaction, error) {
	if l.closed.Load() {
		return nil, ErrStoreClosed
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	txn, ok := l.byRef[ref]
	if !ok {
		return nil, ErrNotFound{Resource: "transaction", ID: ref}
	}
	cp := *txn
	return &cp, nil
}

// ByAccount returns the entries where acctID is source or destination.
func (l *Ledger) ByAccount(acctID string, order Order) ([]Transaction, error) {
	return l.filter(order, func(t *Transaction) bool { return t.Involves(acctID) })
}

func (l *Ledger) All(order Order) ([]Transaction, error) {
	return l.filter(order, func(*Transaction) bool { return true })
}

func (l *Ledger) filter(order Order, keep func(*Transaction) bool) ([]Transaction, error) {
	if l.closed.Load() {
		return nil, ErrStoreClosed
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Transaction, 0)
	for _, t := range l.txns {
		if keep(t) {
			out = append(out, *t)
		}
	}
	if order == OrderDesc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// SetStatus moves a pending entry to a terminal status. Terminal entries never
// change again.
func (l *Ledger) SetStatus(id snowflake.ID, status Status) (*Transaction, error) {
	if l.closed.Load() {
		return nil, ErrStoreClosed
	}
	if !status.valid() {
		return nil, ErrBadRequest{Fields: map[string]string{"status": "must be pending, completed or failed"}}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	txn, ok := l.byID[id]
	if !ok {
		return nil, ErrNotFound{Resource: "transaction", ID: id.String()}
	}
	if txn.Status.Terminal() || status == StatusPending {
		return nil, ErrStatusTransition{ID: id.String(), From: txn.Status, To: status}
	}
	txn.Status = status
	cp := *txn
	return &cp, nil
}
