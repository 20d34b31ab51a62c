package bankxlive

import (
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type StoreConfig struct {
	NodeID         int64
	OpeningBalance decimal.Decimal
}

// Store bundles the in-memory account, transaction, KYC and card state behind one
// lifecycle. Components receive the Store (or one of its parts) explicitly.
type Store struct {
	Accounts *AccountStore
	Ledger   *Ledger
	KYC      *KYCStore
	Cards    *CardStore

	closed *atomic.Bool
}

func OpenStore(cfg StoreConfig) (*Store, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, err
	}
	closed := &atomic.Bool{}
	return &Store{
		Accounts: newAccountStore(cfg.OpeningBalance, closed),
		Ledger:   newLedger(node, closed),
		KYC:      newKYCStore(node, closed),
		Cards:    newCardStore(node, closed),
		closed:   closed,
	}, nil
}

// Close makes every further store operation fail with ErrStoreClosed.
// It is safe to call more than once.
func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}
