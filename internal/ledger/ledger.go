package ledger

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/askiada/go-vessel/pkg/pipeline/measure"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	mode         TEXT NOT NULL,
	args_json    TEXT NOT NULL,
	status       TEXT NOT NULL,
	error        TEXT,
	started_at   TEXT NOT NULL,
	finished_at  TEXT
);

CREATE TABLE IF NOT EXISTS run_stages (
	run_id    TEXT NOT NULL,
	stage     TEXT NOT NULL,
	position  INTEGER NOT NULL,
	calls     INTEGER NOT NULL,
	failures  INTEGER NOT NULL,
	avg_ns    INTEGER NOT NULL,
	total_ns  INTEGER NOT NULL,
	PRIMARY KEY (run_id, stage),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

var ErrRunMustBeSet = errors.New("run must be set")

// Run is one recorded driver invocation.
type Run struct {
	ID         string
	Mode       string
	Args       []string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Stage is the timing summary of one stage of a run.
type Stage struct {
	Name     string
	Calls    int64
	Failures int64
	Average  time.Duration
	Total    time.Duration
}

// Ledger stores the history of driver runs in SQLite.
type Ledger struct {
	db *sql.DB
}

// Open opens the database at path and creates the tables when needed.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pragma")
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pragma fk")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}

	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Begin records the start of a run and returns it with a fresh id.
func (l *Ledger) Begin(mode string, args []string) (*Run, error) {
	if args == nil {
		args = []string{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return nil, errors.Wrap(err, "marshal args")
	}

	run := &Run{
		ID:        uuid.New().String(),
		Mode:      mode,
		Args:      args,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err = l.db.Exec(
		`INSERT INTO runs (run_id, mode, args_json, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Mode, string(argsJSON), run.Status, run.StartedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "insert run")
	}

	return run, nil
}

// Finish closes the run with the outcome of runErr and stores the stage timings of m, which may be nil.
func (l *Ledger) Finish(run *Run, runErr error, m measure.Measure) error {
	if run == nil {
		return ErrRunMustBeSet
	}

	run.FinishedAt = time.Now().UTC()
	run.Status = StatusSucceeded
	run.Error = ""
	if runErr != nil {
		run.Status = StatusFailed
		run.Error = runErr.Error()
	}

	tx, err := l.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE run_id = ?`,
		run.Status, nullString(run.Error), run.FinishedAt.Format(timeLayout), run.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update run")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Errorf("unknown run %s", run.ID)
	}

	if m != nil {
		for pos, name := range m.Names() {
			mt := m.GetMetric(name)
			if mt == nil {
				continue
			}
			_, err = tx.Exec(
				`INSERT INTO run_stages (run_id, stage, position, calls, failures, avg_ns, total_ns)
				 VALUES (?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT(run_id, stage) DO UPDATE SET
					calls = excluded.calls, failures = excluded.failures,
					avg_ns = excluded.avg_ns, total_ns = excluded.total_ns`,
				run.ID, name, pos, mt.Count(), mt.Failures(),
				int64(mt.AVGDuration()), int64(mt.TotalDuration()),
			)
			if err != nil {
				return errors.Wrapf(err, "insert stage %s", name)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}

	return nil
}

// Recent returns up to n runs, most recent first.
func (l *Ledger) Recent(n int) ([]Run, error) {
	rows, err := l.db.Query(
		`SELECT run_id, mode, args_json, status, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                  Run
			argsJSON, startedStr string
			errStr, finishedStr  sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Mode, &argsJSON, &run.Status, &errStr, &startedStr, &finishedStr); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		if err := json.Unmarshal([]byte(argsJSON), &run.Args); err != nil {
			return nil, errors.Wrapf(err, "unmarshal args of %s", run.ID)
		}
		run.Error = errStr.String
		run.StartedAt, err = time.Parse(timeLayout, startedStr)
		if err != nil {
			return nil, errors.Wrapf(err, "parse started_at of %s", run.ID)
		}
		if finishedStr.Valid {
			run.FinishedAt, err = time.Parse(timeLayout, finishedStr.String)
			if err != nil {
				return nil, errors.Wrapf(err, "parse finished_at of %s", run.ID)
			}
		}
		runs = append(runs, run)
	}

	return runs, errors.Wrap(rows.Err(), "iterate runs")
}

// Stages returns the stage timings of a run in execution order.
func (l *Ledger) Stages(runID string) ([]Stage, error) {
	rows, err := l.db.Query(
		`SELECT stage, calls, failures, avg_ns, total_ns FROM run_stages WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query stages")
	}
	defer rows.Close()

	var stages []Stage
	for rows.Next() {
		var (
			st           Stage
			avgNs, total int64
		)
		if err := rows.Scan(&st.Name, &st.Calls, &st.Failures, &avgNs, &total); err != nil {
			return nil, errors.Wrap(err, "scan stage")
		}
		st.Average = time.Duration(avgNs)
		st.Total = time.Duration(total)
		stages = append(stages, st)
	}

	return stages, errors.Wrap(rows.Err(), "iterate stages")
}

func nullString(s string) any {
	if s == "" {
		return nil
	}

	return s
}
