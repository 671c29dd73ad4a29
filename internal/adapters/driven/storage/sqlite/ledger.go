package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/stopprep/internal/core/domain"
	"github.com/custodia-labs/stopprep/internal/core/ports/driven"
)

// manifestLedger implements driven.ManifestLedger.
type manifestLedger struct {
	store *Store
}

var _ driven.ManifestLedger = (*manifestLedger)(nil)

const stampColumns = "path, split, scope_kind, scope_domain, type, rows, digest, run_id, created_at"

// Save stores or replaces the stamp for stamp.Path.
func (l *manifestLedger) Save(ctx context.Context, stamp domain.ManifestStamp) error {
	_, err := l.store.db.ExecContext(ctx, `
		INSERT INTO manifest_stamps (`+stampColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			split = excluded.split,
			scope_kind = excluded.scope_kind,
			scope_domain = excluded.scope_domain,
			type = excluded.type,
			rows = excluded.rows,
			digest = excluded.digest,
			run_id = excluded.run_id,
			created_at = excluded.created_at
	`, stamp.Path, string(stamp.Key.Split), string(stamp.Key.Scope.Kind), string(stamp.Key.Scope.Domain),
		stamp.Key.Type, stamp.Rows, stamp.Digest, stamp.RunID, stamp.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving stamp: %w", err)
	}
	return nil
}

// Get retrieves the stamp for path.
func (l *manifestLedger) Get(ctx context.Context, path string) (*domain.ManifestStamp, error) {
	row := l.store.db.QueryRowContext(ctx,
		"SELECT "+stampColumns+" FROM manifest_stamps WHERE path = ?", path)

	stamp, err := scanStamp(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning stamp: %w", err)
	}
	return stamp, nil
}

// List returns all stamps ordered by path.
func (l *manifestLedger) List(ctx context.Context) ([]domain.ManifestStamp, error) {
	rows, err := l.store.db.QueryContext(ctx,
		"SELECT "+stampColumns+" FROM manifest_stamps ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("querying stamps: %w", err)
	}
	defer rows.Close()

	var stamps []domain.ManifestStamp //nolint:prealloc // size unknown from query
	for rows.Next() {
		stamp, err := scanStamp(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stamp: %w", err)
		}
		stamps = append(stamps, *stamp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stamps: %w", err)
	}

	return stamps, nil
}

// Delete removes the stamp for path.
func (l *manifestLedger) Delete(ctx context.Context, path string) error {
	_, err := l.store.db.ExecContext(ctx, "DELETE FROM manifest_stamps WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("deleting stamp: %w", err)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanStamp(s scanner) (*domain.ManifestStamp, error) {
	var stamp domain.ManifestStamp
	var split, kind, dom string
	var createdAt sql.NullTime
	if err := s.Scan(&stamp.Path, &split, &kind, &dom, &stamp.Key.Type,
		&stamp.Rows, &stamp.Digest, &stamp.RunID, &createdAt); err != nil {
		return nil, err
	}

	stamp.Key.Split = domain.Split(split)
	stamp.Key.Scope = domain.Scope{Kind: domain.ScopeKind(kind), Domain: domain.Domain(dom)}
	if createdAt.Valid {
		stamp.CreatedAt = createdAt.Time
	}
	return &stamp, nil
}
