package analytics

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// ResultsLedger persists finished-tournament standings as a
// write-behind audit trail. It is explicitly not used for state
// recovery: a dropped write is logged and discarded, never retried.
type ResultsLedger struct {
	db *sql.DB
}

// NewResultsLedger opens a connection pool against the given DSN and
// ensures the results table exists.
func NewResultsLedger(dsn string) (*ResultsLedger, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	ledger := &ResultsLedger{db: db}
	if err := ledger.createTable(); err != nil {
		db.Close()
		return nil, err
	}
	return ledger, nil
}

func (l *ResultsLedger) createTable() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS tournament_results (
			tournament_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			placement INTEGER NOT NULL,
			payout DOUBLE PRECISION NOT NULL DEFAULT 0,
			bounty_won DOUBLE PRECISION NOT NULL DEFAULT 0,
			finished_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (tournament_id, user_id)
		)
	`)
	return err
}

// RecordPlacement writes one finisher's standing on a background
// goroutine, so the caller never waits on the database. Failures are
// logged and swallowed.
func (l *ResultsLedger) RecordPlacement(tournamentID, userID string, placement int, payout, bountyWon float64) {
	go l.writePlacement(tournamentID, userID, placement, payout, bountyWon)
}

func (l *ResultsLedger) writePlacement(tournamentID, userID string, placement int, payout, bountyWon float64) {
	_, err := l.db.Exec(
		`INSERT INTO tournament_results (tournament_id, user_id, placement, payout, bounty_won, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (tournament_id, user_id) DO UPDATE SET
		   placement = EXCLUDED.placement,
		   payout = EXCLUDED.payout,
		   bounty_won = EXCLUDED.bounty_won,
		   finished_at = EXCLUDED.finished_at`,
		tournamentID, userID, placement, payout, bountyWon, time.Now(),
	)
	if err != nil {
		log.Printf("analytics: failed to record placement for tournament %s: %v", tournamentID, err)
	}
}

// Standing is one row of a tournament's final results.
type Standing struct {
	UserID     string
	Placement  int
	Payout     float64
	BountyWon  float64
	FinishedAt time.Time
}

// Standings reads back a finished tournament's ledger entries ordered
// by placement.
func (l *ResultsLedger) Standings(tournamentID string) ([]Standing, error) {
	rows, err := l.db.Query(
		`SELECT user_id, placement, payout, bounty_won, finished_at
		 FROM tournament_results WHERE tournament_id = $1 ORDER BY placement ASC`,
		tournamentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Standing
	for rows.Next() {
		var s Standing
		if err := rows.Scan(&s.UserID, &s.Placement, &s.Payout, &s.BountyWon, &s.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (l *ResultsLedger) Close() error {
	return l.db.Close()
}
