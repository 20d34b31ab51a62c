package bankxlive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
)

// LocalHelper prepares the journal schema for local runs and tests.
type LocalHelper struct {
	Conn *pgx.Conn
	Dir  string
}

func NewLocalHelper(connStr string) (*LocalHelper, error) {
	conn, err := pgx.Connect(context.Background(), connStr)
	if err != nil {
		return nil, err
	}
	return &LocalHelper{
		Conn: conn,
		Dir:  "testdata",
	}, nil
}

// InitDB creates the journal tables and returns a func that drops them again.
func (lh *LocalHelper) InitDB() (func(), error) {
	if err := lh.exec("init_db.sql"); err != nil {
		return nil, err
	}
	return lh.teardownDB(), nil
}

func (lh *LocalHelper) exec(name string) error {
	bits, err := os.ReadFile(filepath.Join(lh.Dir, name))
	if err != nil {
		return err
	}
	_, err = lh.Conn.Exec(context.Background(), string(bits))
	return err
}

func (lh *LocalHelper) Close() error {
	return lh.Conn.Close(context.Background())
}

func (lh *LocalHelper) teardownDB() func() {
	return func() {
		defer lh.Conn.Close(context.Background())

		if err := lh.exec("teardown_db.sql"); err != nil {
			fmt.Fprintf(os.Stderr, "DB cleanup exec teardown sql: %s", err.Error())
		}
	}
}
