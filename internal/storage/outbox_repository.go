package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/carbontrack/internal/models"
	"github.com/carbontrack/internal/types"
)

// OutboxRepository keeps locally-saved emission entries in Postgres until
// they are accepted by the CarbonTrack API.
type OutboxRepository struct {
	db *PostgresDB
}

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db *PostgresDB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Enqueue stores a local-only entry for userID. Enqueueing the same id twice is a no-op.
func (r *OutboxRepository) Enqueue(ctx context.Context, userID string, entry models.EmissionEntry) error {
	query := `
		INSERT INTO emission_outbox
			(local_id, user_id, category, activity, amount, unit, entry_date, description, co2_equivalent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (local_id) DO NOTHING
	`

	var description *string
	if entry.Description != "" {
		description = &entry.Description
	}
	createdAt := time.Now().UTC()
	if entry.CreatedAt != nil {
		createdAt = *entry.CreatedAt
	}

	_, err := r.db.Pool().Exec(ctx, query,
		entry.ID,
		userID,
		string(entry.Category),
		entry.Activity,
		entry.Amount,
		entry.Unit,
		entry.Date,
		description,
		entry.CO2Equivalent,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue entry %s: %w", entry.ID, err)
	}
	return nil
}

// Pending returns the queued entries of userID, oldest first
func (r *OutboxRepository) Pending(ctx context.Context, userID string) ([]models.EmissionEntry, error) {
	query := `
		SELECT local_id, category, activity, amount, unit, entry_date, description, co2_equivalent, created_at
		FROM emission_outbox
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	entries := []models.EmissionEntry{}
	for rows.Next() {
		entry, err := scanOutboxRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox: %w", err)
	}
	return entries, nil
}

func scanOutboxRow(rows pgx.Rows) (models.EmissionEntry, error) {
	var (
		entry       models.EmissionEntry
		category    string
		description *string
		co2         *float64
		createdAt   time.Time
	)
	if err := rows.Scan(&entry.ID, &category, &entry.Activity, &entry.Amount, &entry.Unit,
		&entry.Date, &description, &co2, &createdAt); err != nil {
		return entry, fmt.Errorf("failed to scan outbox row: %w", err)
	}
	entry.Category = types.Category(category)
	if description != nil {
		entry.Description = *description
	}
	entry.CO2Equivalent = co2
	entry.CreatedAt = &createdAt
	entry.LocalOnly = true
	return entry, nil
}

// Remove drops an entry once the server has accepted it
func (r *OutboxRepository) Remove(ctx context.Context, localID string) error {
	if _, err := r.db.Pool().Exec(ctx, `DELETE FROM emission_outbox WHERE local_id = $1`, localID); err != nil {
		return fmt.Errorf("failed to remove entry %s: %w", localID, err)
	}
	return nil
}

// MarkFailed records a failed sync attempt
func (r *OutboxRepository) MarkFailed(ctx context.Context, localID string, reason string) error {
	query := `UPDATE emission_outbox SET attempts = attempts + 1, last_error = $2 WHERE local_id = $1`
	if _, err := r.db.Pool().Exec(ctx, query, localID, reason); err != nil {
		return fmt.Errorf("failed to mark entry %s: %w", localID, err)
	}
	return nil
}
