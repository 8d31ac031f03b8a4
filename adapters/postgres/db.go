package postgres

import (
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"incidentscope/internal/errors"
)

// NewDB opens and pings a Postgres connection pool.
func NewDB(databaseURL string) (*sqlx.DB, error) {
	start := time.Now()
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	log.Printf("[Postgres] connected in %.2fms",
		float64(time.Since(start).Nanoseconds())/1e6)
	return db, nil
}
