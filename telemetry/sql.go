package telemetry

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLRecorder persists one row per restart boundary plus a summary row at
// solve completion to a SQLite database, for offline analysis of a run's
// restart cadence.
type SQLRecorder struct {
	db  *sqlx.DB
	log *logrus.Entry
}

const schema = `
CREATE TABLE IF NOT EXISTS restarts (
	run        TEXT NOT NULL,
	at         DATETIME NOT NULL,
	conflicts  INTEGER NOT NULL,
	restarts   INTEGER NOT NULL,
	decisions  INTEGER NOT NULL,
	learnts    INTEGER NOT NULL,
	trail_len  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	run        TEXT NOT NULL,
	at         DATETIME NOT NULL,
	status     TEXT NOT NULL,
	conflicts  INTEGER NOT NULL,
	restarts   INTEGER NOT NULL,
	decisions  INTEGER NOT NULL,
	learnts    INTEGER NOT NULL
);
`

// OpenSQLRecorder opens (creating if necessary) a SQLite database at path
// and ensures its schema exists.
func OpenSQLRecorder(path string) (*SQLRecorder, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: opening %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("telemetry: creating schema: %w", err)
	}
	return &SQLRecorder{db: db, log: logrus.WithField("component", "telemetry.sql")}, nil
}

func (r *SQLRecorder) Close() error {
	return r.db.Close()
}

func (r *SQLRecorder) RecordRestart(run string, snap Snapshot) {
	_, err := r.db.Exec(
		`INSERT INTO restarts (run, at, conflicts, restarts, decisions, learnts, trail_len)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run, time.Now(), snap.Conflicts, snap.Restarts, snap.Decisions, snap.Learnts, snap.TrailLen,
	)
	if err != nil {
		r.log.WithError(err).Warn("failed to record restart")
	}
}

func (r *SQLRecorder) RecordCompletion(run string, snap Snapshot, status string) {
	_, err := r.db.Exec(
		`INSERT INTO runs (run, at, status, conflicts, restarts, decisions, learnts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run, time.Now(), status, snap.Conflicts, snap.Restarts, snap.Decisions, snap.Learnts,
	)
	if err != nil {
		r.log.WithError(err).Warn("failed to record run completion")
	}
}
