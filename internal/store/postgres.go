package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parkeasy/parkeasy-backend/internal/models"
)

// PostgresReservationStore keeps the reservation collection in a single
// Postgres table. Load and Save still operate on the whole collection so the
// store is interchangeable with the file-backed one.
type PostgresReservationStore struct {
	pool *pgxpool.Pool
}

// NewPostgresReservationStore creates a store over an existing pool and
// ensures the backing table exists.
func NewPostgresReservationStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresReservationStore, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reservations (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL,
			user_name     TEXT NOT NULL,
			email         TEXT NOT NULL,
			slot_id       TEXT NOT NULL,
			vehicle_plate TEXT NOT NULL,
			start_time    TIMESTAMPTZ NOT NULL,
			end_time      TIMESTAMPTZ NOT NULL,
			status        TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure reservations table: %w", err)
	}
	return &PostgresReservationStore{pool: pool}, nil
}

// Load returns all reservations ordered by creation time.
func (s *PostgresReservationStore) Load(ctx context.Context) ([]models.Reservation, error) {
	query := `
		SELECT id, user_id, user_name, email, slot_id, vehicle_plate,
		       start_time, end_time, status, created_at
		FROM reservations
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	reservations := []models.Reservation{}
	for rows.Next() {
		var r models.Reservation
		err := rows.Scan(
			&r.ID, &r.UserID, &r.UserName, &r.Email, &r.SlotID,
			&r.VehiclePlate, &r.StartTime, &r.EndTime, &r.Status, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}

	return reservations, rows.Err()
}

// Save replaces the table contents with the given collection in one
// transaction.
func (s *PostgresReservationStore) Save(ctx context.Context, reservations []models.Reservation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reservations`); err != nil {
		return fmt.Errorf("failed to clear reservations: %w", err)
	}

	for _, r := range reservations {
		_, err := tx.Exec(ctx, `
			INSERT INTO reservations (id, user_id, user_name, email, slot_id,
			                          vehicle_plate, start_time, end_time, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, r.ID, r.UserID, r.UserName, r.Email, r.SlotID,
			r.VehiclePlate, r.StartTime, r.EndTime, r.Status, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert reservation: %w", err)
		}
	}

	return tx.Commit(ctx)
}
