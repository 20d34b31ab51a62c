package bankxlive

import "context"

//go:generate mockgen -destination=mocks/mock_journal.go -package=mocks . Journal

// Journal mirrors accounts and ledger entries to durable storage. It is
// write-only: nothing is ever read back into the Store.
type Journal interface {
	RecordAccounts(ctx context.Context, accts ...Account) error
	RecordTransactions(ctx context.Context, txns ...Transaction) error
	Close()
}

var (
	_ Journal = nopJournal{}
	_ Journal = (*PostgresJournal)(nil)
)

type nopJournal struct{}

func NewNopJournal() Journal {
	return nopJournal{}
}

func (nopJournal) RecordAccounts(context.Context, ...Account) error { return nil }

func (nopJournal) RecordTransactions(context.Context, ...Transaction) error { return nil }

func (nopJournal) Close() {}
