package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"starscape-server/internal/shared/database"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing discovery repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Upsert(ctx context.Context, seed string, rec Record) error {
	logger := r.logger.With(
		"component", "discovery_repository",
		"operation", "upsert",
		"key", rec.Key,
	)
	logger.Debug("Upserting discovery record")

	query := `
		INSERT INTO discoveries (seed, object_key, kind, type_name, x, y, pair_id, designation, twin_x, twin_y, discovered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (seed, object_key) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		seed, rec.Key, rec.Kind, rec.TypeName,
		rec.X, rec.Y, rec.PairID, rec.Designation,
		rec.TwinX, rec.TwinY, rec.DiscoveredAt,
	)
	if err != nil {
		logger.Error("Failed to upsert discovery record", "error", err)
		return fmt.Errorf("failed to upsert discovery record: %w", err)
	}

	logger.Debug("Discovery record upserted")
	return nil
}

func (r *Repository) ListBySeed(ctx context.Context, seed string) ([]Record, error) {
	logger := r.logger.With(
		"component", "discovery_repository",
		"operation", "list_by_seed",
		"seed", seed,
	)
	logger.Debug("Listing discovery records")

	query := `
		SELECT object_key, kind, type_name, x, y, pair_id, designation, twin_x, twin_y, discovered_at
		FROM discoveries
		WHERE seed = $1
		ORDER BY discovered_at, object_key
	`

	rows, err := r.db.QueryContext(ctx, query, seed)
	if err != nil {
		logger.Error("Failed to query discovery records", "error", err)
		return nil, fmt.Errorf("failed to query discovery records: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var records []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.Key,
			&rec.Kind,
			&rec.TypeName,
			&rec.X,
			&rec.Y,
			&rec.PairID,
			&rec.Designation,
			&rec.TwinX,
			&rec.TwinY,
			&rec.DiscoveredAt,
		)
		if err != nil {
			logger.Error("Failed to scan discovery row", "error", err)
			return nil, fmt.Errorf("failed to scan discovery record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating discovery records: %w", err)
	}

	logger.Debug("Discovery records retrieved", "count", len(records))
	return records, nil
}

func (r *Repository) DeleteBySeed(ctx context.Context, seed string) error {
	logger := r.logger.With(
		"component", "discovery_repository",
		"operation", "delete_by_seed",
		"seed", seed,
	)
	logger.Debug("Deleting discovery records")

	result, err := r.db.ExecContext(ctx, "DELETE FROM discoveries WHERE seed = $1", seed)
	if err != nil {
		logger.Error("Failed to delete discovery records", "error", err)
		return fmt.Errorf("failed to delete discovery records: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil {
		logger.Info("Discovery records deleted", "count", affected)
	}
	return nil
}
