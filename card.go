package bankxlive

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	CardBIN          = "506099"
	cardValidYears   = 3
	cardSerialDigits = 10
)

type CardStatus string

const (
	CardActive  CardStatus = "active"
	CardBlocked CardStatus = "blocked"
	CardExpired CardStatus = "expired"
)

type VirtualCard struct {
	ID          snowflake.ID `json:"id"`
	AcctID      string       `json:"accountNumber"`
	CardNumber  string       `json:"cardNumber"`
	ExpiryMonth string       `json:"expiryMonth"`
	ExpiryYear  string       `json:"expiryYear"`
	CVV         string       `json:"cvv,omitempty"`
	Status      CardStatus   `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Masked returns a copy that is safe to list: the middle six digits are
// starred and the CVV is dropped.
func (c VirtualCard) Masked() VirtualCard {
	c.CardNumber = MaskCardNumber(c.CardNumber)
	c.CVV = ""
	return c
}

func MaskCardNumber(number string) string {
	if len(number) < 10 {
		return strings.Repeat("*", len(number))
	}
	return number[:6] + strings.Repeat("*", len(number)-10) + number[len(number)-4:]
}

// CardStore holds issued virtual cards. An account has at most one active
// card, and card numbers are unique across the store.
type CardStore struct {
	mu      sync.RWMutex
	node    *snowflake.Node
	cards   []*VirtualCard
	numbers map[string]struct{}
	closed  *atomic.Bool
	digits  func(n int) int
	clock   func() time.Time
}

func newCardStore(node *snowflake.Node, closed *atomic.Bool) *CardStore {
	return &CardStore{
		node:    node,
		numbers: make(map[string]struct{}),
		closed:  closed,
		digits:  rand.IntN,
		clock:   time.Now,
	}
}

func (k *CardStore) Issue(acctID string) (*VirtualCard, error) {
	if k.closed.Load() {
		return nil, ErrStoreClosed
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, c := range k.cards {
		if c.AcctID == acctID && c.Status == CardActive {
			return nil, ErrConflict{Resource: "virtual card", Key: acctID}
		}
	}
	number, err := k.nextNumber()
	if err != nil {
		return nil, err
	}
	now := k.clock().UTC()
	expiry := now.AddDate(cardValidYears, 0, 0)
	c := &VirtualCard{
		ID:          k.node.Generate(),
		AcctID:      acctID,
		CardNumber:  number,
		ExpiryMonth: fmt.Sprintf("%02d", int(expiry.Month())),
		ExpiryYear:  fmt.Sprintf("%02d", expiry.Year()%100),
		CVV:         fmt.Sprintf("%03d", k.digits(1000)),
		Status:      CardActive,
		CreatedAt:   now,
	}
	k.cards = append(k.cards, c)
	k.numbers[number] = struct{}{}
	cp := *c
	return &cp, nil
}

// nextNumber must be called with mu held for writing.
func (k *CardStore) nextNumber() (string, error) {
	for range maxNumberAttempts {
		var sb strings.Builder
		sb.WriteString(CardBIN)
		for range cardSerialDigits {
			sb.WriteByte(byte('0' + k.digits(10)))
		}
		number := sb.String()
		if _, taken := k.numbers[number]; !taken {
			return number, nil
		}
	}
	return "", fmt.Errorf("no free card number after %d attempts: %w", maxNumberAttempts, ErrInternalServer)
}

// ByAccount returns the account's cards, oldest first, with full details.
func (k *CardStore) ByAccount(acctID string) ([]VirtualCard, error) {
	if k.closed.Load() {
		return nil, ErrStoreClosed
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]VirtualCard, 0)
	for _, c := range k.cards {
		if c.AcctID == acctID {
			out = append(out, *c)
		}
	}
	return out, nil
}
