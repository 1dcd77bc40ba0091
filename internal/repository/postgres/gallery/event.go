package gallery

import (
	"context"
	"fmt"

	"galeria/internal/domain"
	models "galeria/internal/domain/models/gallery"
	galleryRepo "galeria/internal/domain/repositories/gallery"

	"galeria/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresEventRepository implements the EventRepository interface
type PostgresEventRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewEventRepository creates a new event repository
func NewEventRepository(config *postgres.RepositoryConfig) galleryRepo.EventRepository {
	return &PostgresEventRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, school, event_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Events)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		event.Name,
		event.School,
		event.EventDate,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT id, name, school, event_date, status, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Events)

	var event models.Event
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.School,
		&event.EventDate,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("event %s: %w", id, domain.ErrEventNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	return &event, nil
}

// List retrieves all events, newest first
func (r *PostgresEventRepository) List(ctx context.Context) ([]models.Event, error) {
	query := fmt.Sprintf(`
		SELECT id, name, school, event_date, status, created_at, updated_at
		FROM %s
		ORDER BY event_date DESC, created_at DESC
	`, r.tables.Events)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.School,
			&event.EventDate,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	// Return empty slice instead of nil if no events
	if events == nil {
		events = []models.Event{}
	}

	return events, nil
}

// Update updates an event
func (r *PostgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, school = $2, event_date = $3, status = $4, updated_at = $5
		WHERE id = $6
	`, r.tables.Events)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		event.Name,
		event.School,
		event.EventDate,
		event.Status,
		event.UpdatedAt,
		event.ID,
	)

	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", event.ID, domain.ErrEventNotFound)
	}

	return nil
}

// Delete deletes an event. The folders table references events, so the
// database rejects deletion while folders remain.
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Events)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      "event still contains folders",
				ResourceType: "event",
				ResourceID:   id,
			}
		}
		return fmt.Errorf("delete event: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s: %w", id, domain.ErrEventNotFound)
	}

	return nil
}
