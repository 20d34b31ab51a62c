package bankxlive

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

const (
	BankCode          = "035"
	AccountNumberLen  = 10
	maxNumberAttempts = 32
)

var (
	// DefaultOpeningBalance is the grant every new account starts with when the
	// configuration does not set one.
	DefaultOpeningBalance = decimal.NewFromInt(5000)

	acctNumberRE = regexp.MustCompile(`^\d{10}$`)
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Account struct {
	AcctID      string          `json:"accountNumber"`
	Username    string          `json:"username"`
	FullName    string          `json:"fullName"`
	Password    string          `json:"-"`
	Role        Role            `json:"role"`
	Balance     decimal.Decimal `json:"balance"`
	KYCVerified bool            `json:"kycVerified"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	// Version increases with every change to the record so a journal can
	// drop snapshots older than the one it already holds.
	Version int64 `json:"-"`
}

type NewAccount struct {
	Username string
	Password string
	FullName string
	Email    string
	Phone    string
	Role     Role
}

// AccountPatch holds the fields Update merges; nil fields are left alone.
type AccountPatch struct {
	FullName    *string
	Email       *string
	Phone       *string
	KYCVerified *bool
}

// ValidAccountNumber reports whether s has the shape of an account number.
// It does not require our bank code, external accounts use the same length.
func ValidAccountNumber(s string) bool {
	return acctNumberRE.MatchString(s)
}

type accountEntry struct {
	mu       sync.Mutex
	username string
	acct     Account
}

func (e *accountEntry) snapshot() *Account {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := e.acct
	return &cp
}

// AccountStore owns every Account record. Map membership is guarded by mu;
// each entry carries its own mutex so balance check and write for one account
// happen as a single step without blocking other accounts.
type AccountStore struct {
	mu      sync.RWMutex
	accts   map[string]*accountEntry
	opening decimal.Decimal
	closed  *atomic.Bool
	digits  func() int
	clock   func() time.Time
}

func newAccountStore(opening decimal.Decimal, closed *atomic.Bool) *AccountStore {
	return &AccountStore{
		accts:   make(map[string]*accountEntry),
		opening: opening,
		closed:  closed,
		digits:  func() int { return rand.IntN(10_000_000) },
		clock:   time.Now,
	}
}

func (s *AccountStore) entry(id string) (*accountEntry, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	return s.lookup(id)
}

// lookup ignores the closed flag. Only compensating writes use it directly.
func (s *AccountStore) lookup(id string) (*accountEntry, error) {
	s.mu.RLock()
	e, ok := s.accts[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound{Resource: "account", ID: id}
	}
	return e, nil
}

func (s *AccountStore) Get(id string) (*Account, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	return e.snapshot(), nil
}

// GetByLoginName scans for an exact, case-sensitive username match.
func (s *AccountStore) GetByLoginName(name string) (*Account, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	s.mu.RLock()
	var found *accountEntry
	for _, e := range s.accts {
		if e.username == name {
			found = e
			break
		}
	}
	s.mu.RUnlock()
	if found == nil {
		return nil, ErrNotFound{Resource: "account", ID: name}
	}
	return found.snapshot(), nil
}

func (s *AccountStore) Create(req NewAccount) (*Account, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	role := req.Role
	if role == "" {
		role = RoleUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.accts {
		if e.username == req.Username {
			return nil, ErrConflict{Resource: "username", Key: req.Username}
		}
	}
	id, err := s.nextNumber()
	if err != nil {
		return nil, err
	}
	e := &accountEntry{
		username: req.Username,
		acct: Account{
			AcctID:    id,
			Username:  req.Username,
			FullName:  req.FullName,
			Password:  req.Password,
			Role:      role,
			Balance:   s.opening,
			Email:     req.Email,
			Phone:     req.Phone,
			CreatedAt: s.clock().UTC(),
			Version:   1,
		},
	}
	s.accts[id] = e
	cp := e.acct
	return &cp, nil
}

// nextNumber must be called with mu held for writing.
func (s *AccountStore) nextNumber() (string, error) {
	for range maxNumberAttempts {
		id := fmt.Sprintf("%s%07d", BankCode, s.digits())
		if _, taken := s.accts[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free account number after %d attempts: %w", maxNumberAttempts, ErrInternalServer)
}

// AdjustBalance adds delta (negative for a debit) to the account balance.
// The balance never goes below zero.
func (s *AccountStore) AdjustBalance(id string, delta decimal.Decimal) (*Account, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	return e.apply(id, delta)
}

// adjust is AdjustBalance for reversals: it still runs once the store is
// closed, so a debit taken before Close is never left without its refund.
func (s *AccountStore) adjust(id string, delta decimal.Decimal) (*Account, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.apply(id, delta)
}

func (e *accountEntry) apply(id string, delta decimal.Decimal) (*Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.acct.Balance.Add(delta)
	if next.IsNegative() {
		return nil, ErrInsufficientFunds{
			AcctID:    id,
			Balance:   e.acct.Balance,
			Requested: delta.Neg(),
		}
	}
	e.acct.Balance = next
	e.acct.Version++
	cp := e.acct
	return &cp, nil
}

func (s *AccountStore) Update(id string, patch AccountPatch) (*Account, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if patch.FullName != nil {
		e.acct.FullName = *patch.FullName
	}
	if patch.Email != nil {
		e.acct.Email = *patch.Email
	}
	if patch.Phone != nil {
		e.acct.Phone = *patch.Phone
	}
	if patch.KYCVerified != nil {
		e.acct.KYCVerified = *patch.KYCVerified
	}
	e.acct.Version++
	cp := e.acct
	return &cp, nil
}

func (s *AccountStore) List() ([]Account, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	s.mu.RLock()
	entries := make([]*accountEntry, 0, len(s.accts))
	for _, e := range s.accts {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]Account, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AcctID < out[j].AcctID })
	return out, nil
}
