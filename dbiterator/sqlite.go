package dbiterator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	driverSQLite       = "sqlite"
	defaultPingTimeout = 5 * time.Second
)

// OpenSQLite opens a pure Go SQLite database. In-memory databases are pinned to a
// single connection so every query sees the same data.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("dbiterator: open sqlite: %w", err)
	}

	if isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("dbiterator: ping sqlite: %w", err)
	}

	log.Debug().Str("dsn", dsn).Msg("SQLite database opened")

	return db, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
