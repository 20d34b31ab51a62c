package bankxlive

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

var (
	pgUpsertAcctSQL = `
		INSERT INTO accounts (acct_id, username, full_name, email, phone, role, balance, kyc_verified, created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (acct_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			balance = EXCLUDED.balance,
			kyc_verified = EXCLUDED.kyc_verified,
			version = EXCLUDED.version,
			updated_at = now()
		WHERE accounts.version < EXCLUDED.version;
	`

	pgUpsertTxnSQL = `
		INSERT INTO transactions (id, from_acct, to_acct, amount, typ, status, reference, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
			updated_at = now()
		WHERE transactions.status = 'pending';
	`
)

// PostgresJournal writes account snapshots and ledger entries as upserts, so
// replaying a record is harmless. Snapshots arrive out of order under
// concurrent transfers; an account row only moves to a higher Version and a
// ledger row only leaves pending once.
type PostgresJournal struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

func NewPostgresJournal(connStr string, log *zerolog.Logger) (*PostgresJournal, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	if err = pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresJournal{
		pool: pool,
		log:  log,
	}, nil
}

func (pg *PostgresJournal) RecordAccounts(ctx context.Context, accts ...Account) error {
	batch := &pgx.Batch{}
	for _, a := range accts {
		batch.Queue(pgUpsertAcctSQL,
			a.AcctID, a.Username, a.FullName, nullable(a.Email), nullable(a.Phone),
			string(a.Role), a.Balance, a.KYCVerified, a.CreatedAt, a.Version)
	}
	return pg.send(ctx, batch)
}

func (pg *PostgresJournal) RecordTransactions(ctx context.Context, txns ...Transaction) error {
	batch := &pgx.Batch{}
	for _, t := range txns {
		var meta any
		if len(t.Metadata) > 0 {
			meta = string(t.Metadata)
		}
		batch.Queue(pgUpsertTxnSQL,
			t.ID.Int64(), nullable(t.From), nullable(t.To), t.Amount,
			string(t.Kind), string(t.Status), nullable(t.Reference), meta, t.CreatedAt)
	}
	return pg.send(ctx, batch)
}

func (pg *PostgresJournal) send(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	results := pg.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			pg.log.Err(err).Int("statement", i).Msg("journal batch statement failed")
			return err
		}
	}
	return nil
}

func (pg *PostgresJournal) Close() {
	pg.pool.Close()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
