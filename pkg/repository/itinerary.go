package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dskvich/trip-planner/pkg/domain"
)

type itineraryRepository struct {
	db *sql.DB
}

func NewItineraryRepository(db *sql.DB) *itineraryRepository {
	return &itineraryRepository{db: db}
}

func (i *itineraryRepository) Save(ctx context.Context, it domain.Itinerary) (int64, error) {
	const query = `
		INSERT INTO itineraries (session_id, destination, duration, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := i.db.QueryRowContext(ctx, query, it.SessionID, it.Destination, it.Duration, it.Content, it.CreatedAt).
		Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("saving itinerary: %w", err)
	}

	return id, nil
}

func (i *itineraryRepository) GetByID(ctx context.Context, id int64) (*domain.Itinerary, error) {
	const query = `
		SELECT id, session_id, destination, duration, content, created_at
		FROM itineraries
		WHERE id = $1
	`

	var it domain.Itinerary
	err := i.db.QueryRowContext(ctx, query, id).
		Scan(&it.ID, &it.SessionID, &it.Destination, &it.Duration, &it.Content, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fetching itinerary by id: %w", err)
	}

	return &it, nil
}

func (i *itineraryRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Itinerary, error) {
	const query = `
		SELECT id, session_id, destination, duration, content, created_at
		FROM itineraries
		WHERE session_id = $1
		ORDER BY created_at DESC
	`

	rows, err := i.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing itineraries: %w", err)
	}
	defer rows.Close()

	var result []domain.Itinerary
	for rows.Next() {
		var it domain.Itinerary
		if err := rows.Scan(&it.ID, &it.SessionID, &it.Destination, &it.Duration, &it.Content, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning itinerary row: %w", err)
		}
		result = append(result, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating itinerary rows: %w", err)
	}

	return result, nil
}
