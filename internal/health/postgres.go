package health

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres checks that the configured database accepts connections.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres prepares a connection pool for dsn. No connection is made until
// the first Check, so an unavailable database does not block startup.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	return &Postgres{db: db}, nil
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Check(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }
