package sim

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dennis-eisen/ptzctrl/ptz"
)

const schema = `
CREATE TABLE IF NOT EXISTS buttons (
	cam       INTEGER NOT NULL,
	pos       INTEGER NOT NULL,
	name      TEXT    NOT NULL DEFAULT '',
	btn_class TEXT    NOT NULL DEFAULT 'btn-secondary',
	saves     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (cam, pos)
)`

// Store keeps the simulated preset buttons in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database at path and seeds a row for
// every camera position in layout. Existing rows are kept. Use ":memory:"
// for a throwaway store.
func OpenStore(ctx context.Context, path string, layout Layout) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// every pooled connection to :memory: would be a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	s := &Store{db: db}
	if err := s.seed(ctx, layout); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) seed(ctx context.Context, layout Layout) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()
	for cam, c := range layout.Cameras {
		for pos := 0; pos < c.Positions; pos++ {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO buttons (cam, pos, btn_class) VALUES (?, ?, ?)`,
				cam, pos, DefaultStyle); err != nil {
				return fmt.Errorf("seed %d/%d: %w", cam, pos, err)
			}
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Rows returns every button ordered by camera, then position.
func (s *Store) Rows(ctx context.Context) ([]ptz.ButtonRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cam, pos, name, btn_class FROM buttons ORDER BY cam, pos`)
	if err != nil {
		return nil, fmt.Errorf("query buttons: %w", err)
	}
	defer rows.Close()

	out := []ptz.ButtonRow{}
	for rows.Next() {
		var r ptz.ButtonRow
		if err := rows.Scan(&r.Cam, &r.Pos, &r.Name, &r.BtnClass); err != nil {
			return nil, fmt.Errorf("scan button: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Update applies a partial button update. It reports false when the button
// does not exist.
func (s *Store) Update(ctx context.Context, p ptz.ButtonPatch) (bool, error) {
	cam, pos, err := p.Key()
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE buttons SET name = COALESCE(?, name), btn_class = COALESCE(?, btn_class) WHERE cam = ? AND pos = ?`,
		p.Name, p.BtnClass, cam, pos)
	if err != nil {
		return false, fmt.Errorf("update %d/%d: %w", cam, pos, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkSaved counts a save_pos for the button. It reports false when the
// button does not exist.
func (s *Store) MarkSaved(ctx context.Context, cam, pos int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE buttons SET saves = saves + 1 WHERE cam = ? AND pos = ?`, cam, pos)
	if err != nil {
		return false, fmt.Errorf("save %d/%d: %w", cam, pos, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Saves returns how often the button's position was saved.
func (s *Store) Saves(ctx context.Context, cam, pos int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT saves FROM buttons WHERE cam = ? AND pos = ?`, cam, pos).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("saves %d/%d: %w", cam, pos, err)
	}
	return n, nil
}

// Reset clears every label and style back to the defaults.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE buttons SET name = '', btn_class = ?`, DefaultStyle); err != nil {
		return fmt.Errorf("reset buttons: %w", err)
	}
	return nil
}
