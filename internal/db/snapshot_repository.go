package db

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/blake2b"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/targeting"
)

// ErrSnapshotNotFound is returned by Load when no row exists for the actor.
var ErrSnapshotNotFound = errors.New("targeting snapshot not found")

// SnapshotRepository persists targeting engine snapshots per actor.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Save upserts the actor's snapshot. Rows whose checksum did not change are
// left untouched; written reports whether a row was inserted or updated.
func (r *SnapshotRepository) Save(ctx context.Context, actor string, s targeting.Snapshot) (written bool, err error) {
	sum := Checksum(s)

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO targeting_snapshots (
			actor_name, current_target, last_target, history, last_update,
			strategy, persistence_mode, locked, lock_start, switch_count,
			last_strategy_change, checksum, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		ON CONFLICT (actor_name) DO UPDATE SET
			current_target       = EXCLUDED.current_target,
			last_target          = EXCLUDED.last_target,
			history              = EXCLUDED.history,
			last_update          = EXCLUDED.last_update,
			strategy             = EXCLUDED.strategy,
			persistence_mode     = EXCLUDED.persistence_mode,
			locked               = EXCLUDED.locked,
			lock_start           = EXCLUDED.lock_start,
			switch_count         = EXCLUDED.switch_count,
			last_strategy_change = EXCLUDED.last_strategy_change,
			checksum             = EXCLUDED.checksum,
			updated_at           = NOW()
		WHERE targeting_snapshots.checksum IS DISTINCT FROM EXCLUDED.checksum`,
		actor,
		int64(s.CurrentTarget),
		int64(s.LastTarget),
		historyToDB(s.History),
		nullTime(s.LastUpdate),
		string(s.Strategy),
		string(s.PersistenceMode),
		s.Locked,
		nullTime(s.LockStart),
		int64(s.SwitchCount),
		nullTime(s.LastStrategyChange),
		sum[:],
	)
	if err != nil {
		return false, fmt.Errorf("saving targeting snapshot for %q: %w", actor, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Load returns the stored snapshot for actor or ErrSnapshotNotFound.
func (r *SnapshotRepository) Load(ctx context.Context, actor string) (targeting.Snapshot, error) {
	row := r.pool.QueryRow(ctx, selectSnapshot+` WHERE actor_name = $1`, actor)

	_, s, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return targeting.Snapshot{}, fmt.Errorf("loading targeting snapshot for %q: %w", actor, ErrSnapshotNotFound)
	}
	if err != nil {
		return targeting.Snapshot{}, fmt.Errorf("loading targeting snapshot for %q: %w", actor, err)
	}
	return s, nil
}

// LoadAll returns every stored snapshot keyed by actor name.
func (r *SnapshotRepository) LoadAll(ctx context.Context) (map[string]targeting.Snapshot, error) {
	rows, err := r.pool.Query(ctx, selectSnapshot+` ORDER BY actor_name`)
	if err != nil {
		return nil, fmt.Errorf("loading targeting snapshots: %w", err)
	}
	defer rows.Close()

	out := make(map[string]targeting.Snapshot)
	for rows.Next() {
		name, s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning targeting snapshot row: %w", err)
		}
		out[name] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating targeting snapshot rows: %w", err)
	}
	return out, nil
}

// Delete removes the actor's snapshot. Deleting a missing row is not an error.
func (r *SnapshotRepository) Delete(ctx context.Context, actor string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM targeting_snapshots WHERE actor_name = $1`, actor); err != nil {
		return fmt.Errorf("deleting targeting snapshot for %q: %w", actor, err)
	}
	return nil
}

const selectSnapshot = `
	SELECT actor_name, current_target, last_target, history, last_update,
	       strategy, persistence_mode, locked, lock_start, switch_count,
	       last_strategy_change
	FROM targeting_snapshots`

func scanSnapshot(row pgx.Row) (string, targeting.Snapshot, error) {
	var (
		name                  string
		current, last, count  int64
		history               []int64
		lastUpdate, lockStart *time.Time
		strategyChange        *time.Time
		strategy, mode        string
		locked                bool
	)
	if err := row.Scan(&name, &current, &last, &history, &lastUpdate,
		&strategy, &mode, &locked, &lockStart, &count, &strategyChange); err != nil {
		return "", targeting.Snapshot{}, err
	}

	return name, targeting.Snapshot{
		CurrentTarget:      model.EntityID(current),
		LastTarget:         model.EntityID(last),
		History:            historyFromDB(history),
		LastUpdate:         fromNullTime(lastUpdate),
		Strategy:           model.StrategyName(strategy),
		PersistenceMode:    model.PersistenceMode(mode),
		Locked:             locked,
		LockStart:          fromNullTime(lockStart),
		SwitchCount:        uint64(count),
		LastStrategyChange: fromNullTime(strategyChange),
	}, nil
}

// Checksum returns the BLAKE2b-256 digest of the snapshot's persisted fields.
// LastUpdate moves every tick and is left out, so an idle actor is not
// rewritten.
func Checksum(s targeting.Snapshot) [blake2b.Size256]byte {
	buf := make([]byte, 0, 128+8*len(s.History))
	buf = binary.BigEndian.AppendUint32(buf, uint32(s.CurrentTarget))
	buf = binary.BigEndian.AppendUint32(buf, uint32(s.LastTarget))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s.History)))
	for _, id := range s.History {
		buf = binary.BigEndian.AppendUint32(buf, uint32(id))
	}
	buf = appendString(buf, string(s.Strategy))
	buf = appendString(buf, string(s.PersistenceMode))
	if s.Locked {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = appendTime(buf, s.LockStart)
	buf = binary.BigEndian.AppendUint64(buf, s.SwitchCount)
	buf = appendTime(buf, s.LastStrategyChange)
	return blake2b.Sum256(buf)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// appendTime encodes at microsecond precision, which is what PostgreSQL keeps.
func appendTime(buf []byte, t time.Time) []byte {
	if t.IsZero() {
		return binary.BigEndian.AppendUint64(buf, 0)
	}
	return binary.BigEndian.AppendUint64(buf, uint64(t.UnixMicro()))
}

func historyToDB(ids []model.EntityID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func historyFromDB(ids []int64) []model.EntityID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]model.EntityID, len(ids))
	for i, id := range ids {
		out[i] = model.EntityID(id)
	}
	return out
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromNullTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
