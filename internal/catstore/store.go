// Package catstore persists a multicat.Controller's θ/SE/pool state
// between requests. It is a thin, swappable layer: internal/cat and
// internal/multicat stay pure in-memory and never import this package.
package catstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("CATSTORE_DB_HOST", "localhost")
	port := getEnv("CATSTORE_DB_PORT", "5432")
	user := getEnv("CATSTORE_DB_USER", "adaptivecat")
	password := getEnv("CATSTORE_DB_PASSWORD", "adaptivecat")
	dbname := getEnv("CATSTORE_DB_NAME", "adaptivecat")
	sslmode := getEnv("CATSTORE_DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Snapshot is a serializable view of one examinee's multi-CAT state,
// enough to reconstruct a multicat.Controller's readouts and pool
// partition across requests.
type Snapshot struct {
	ExamineeID       string
	Thetas           map[string]float64
	StandardErrors   map[string]float64
	NItems           map[string]int
	SeenItemIDs      []string
	RemainingItemIDs []string
	StoppingReason   string
}

// Store wraps a *sql.DB with the snapshot table's read/write pair.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Save upserts snap, keyed by ExamineeID.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	thetas, err := json.Marshal(snap.Thetas)
	if err != nil {
		return fmt.Errorf("marshal thetas: %w", err)
	}
	ses, err := json.Marshal(snap.StandardErrors)
	if err != nil {
		return fmt.Errorf("marshal standard_errors: %w", err)
	}
	nItems, err := json.Marshal(snap.NItems)
	if err != nil {
		return fmt.Errorf("marshal n_items: %w", err)
	}
	seen, err := json.Marshal(snap.SeenItemIDs)
	if err != nil {
		return fmt.Errorf("marshal seen_item_ids: %w", err)
	}
	remaining, err := json.Marshal(snap.RemainingItemIDs)
	if err != nil {
		return fmt.Errorf("marshal remaining_item_ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cat_snapshots (examinee_id, thetas, standard_errors, n_items, seen_item_ids, remaining_item_ids, stopping_reason, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (examinee_id) DO UPDATE SET
			thetas = EXCLUDED.thetas,
			standard_errors = EXCLUDED.standard_errors,
			n_items = EXCLUDED.n_items,
			seen_item_ids = EXCLUDED.seen_item_ids,
			remaining_item_ids = EXCLUDED.remaining_item_ids,
			stopping_reason = EXCLUDED.stopping_reason,
			updated_at = NOW()
	`, snap.ExamineeID, thetas, ses, nItems, seen, remaining, snap.StoppingReason)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads back the snapshot for examineeID, or (nil, nil) if none
// exists yet.
func (s *Store) Load(ctx context.Context, examineeID string) (*Snapshot, error) {
	var (
		thetas, ses, nItems, seen, remaining []byte
		reason                               string
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT thetas, standard_errors, n_items, seen_item_ids, remaining_item_ids, stopping_reason
		FROM cat_snapshots WHERE examinee_id = $1
	`, examineeID)

	if err := row.Scan(&thetas, &ses, &nItems, &seen, &remaining, &reason); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap := &Snapshot{ExamineeID: examineeID, StoppingReason: reason}
	if err := json.Unmarshal(thetas, &snap.Thetas); err != nil {
		return nil, fmt.Errorf("unmarshal thetas: %w", err)
	}
	if err := json.Unmarshal(ses, &snap.StandardErrors); err != nil {
		return nil, fmt.Errorf("unmarshal standard_errors: %w", err)
	}
	if err := json.Unmarshal(nItems, &snap.NItems); err != nil {
		return nil, fmt.Errorf("unmarshal n_items: %w", err)
	}
	if err := json.Unmarshal(seen, &snap.SeenItemIDs); err != nil {
		return nil, fmt.Errorf("unmarshal seen_item_ids: %w", err)
	}
	if err := json.Unmarshal(remaining, &snap.RemainingItemIDs); err != nil {
		return nil, fmt.Errorf("unmarshal remaining_item_ids: %w", err)
	}
	return snap, nil
}

// Delete removes the stored snapshot for examineeID, if any.
func (s *Store) Delete(ctx context.Context, examineeID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cat_snapshots WHERE examinee_id = $1`, examineeID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
