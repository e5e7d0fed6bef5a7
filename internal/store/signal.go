package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// signalRetention is how many writes are kept behind the newest one.
const signalRetention = 1024

// Signal is one recorded write. Seq grows strictly across every instance
// sharing the file.
type Signal struct {
	Seq      int64
	At       time.Time
	Instance string
}

// TouchSignal appends a write by instance and prunes rows older than the
// retention window.
func (db *DB) TouchSignal(ctx context.Context, instance string, at time.Time) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO data_signals (instance, at) VALUES (?, ?)`, instance, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("record signal: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("record signal: %w", err)
	}
	if seq > signalRetention {
		if _, err := db.ExecContext(ctx, `DELETE FROM data_signals WHERE seq <= ?`, seq-signalRetention); err != nil {
			return fmt.Errorf("prune signals: %w", err)
		}
	}
	return nil
}

// ReadSignal returns the newest write, if any.
func (db *DB) ReadSignal(ctx context.Context) (Signal, bool, error) {
	var (
		sig Signal
		ms  int64
	)
	err := db.QueryRowContext(ctx,
		`SELECT seq, instance, at FROM data_signals ORDER BY seq DESC LIMIT 1`).Scan(&sig.Seq, &sig.Instance, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return Signal{}, false, nil
	}
	if err != nil {
		return Signal{}, false, err
	}
	sig.At = time.UnixMilli(ms)
	return sig, true, nil
}

// SignalsSince returns every retained write with a sequence above after,
// oldest first.
func (db *DB) SignalsSince(ctx context.Context, after int64) ([]Signal, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT seq, instance, at FROM data_signals WHERE seq > ? ORDER BY seq`, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Signal
	for rows.Next() {
		var (
			sig Signal
			ms  int64
		)
		if err := rows.Scan(&sig.Seq, &sig.Instance, &ms); err != nil {
			return nil, err
		}
		sig.At = time.UnixMilli(ms)
		out = append(out, sig)
	}
	return out, rows.Err()
}

// Signaler records writes on behalf of one instance.
type Signaler struct {
	db       *DB
	instance string
	now      func() time.Time
}

func NewSignaler(db *DB, instance string) *Signaler {
	return &Signaler{db: db, instance: instance, now: time.Now}
}

// Instance returns the id written into every signal.
func (s *Signaler) Instance() string {
	return s.instance
}

func (s *Signaler) Touch(ctx context.Context) error {
	return s.db.TouchSignal(ctx, s.instance, s.now())
}
