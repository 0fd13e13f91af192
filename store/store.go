package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"

	_ "modernc.org/sqlite"

	"github.com/tablevox/tablevox/dialog"
)

const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	phone TEXT,
	email TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reservations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	customer_id INTEGER,
	reservation_date DATE NOT NULL,
	reservation_time TIME NOT NULL,
	party_size INTEGER DEFAULT 2,
	special_requests TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (customer_id) REFERENCES customers (id)
);

CREATE INDEX IF NOT EXISTS idx_reservations_date ON reservations (reservation_date);
CREATE INDEX IF NOT EXISTS idx_reservations_customer ON reservations (customer_id);
`

// Store persists confirmed reservations in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// modernc sqlite serialises writes itself; one connection avoids
	// SQLITE_BUSY under concurrent webhooks.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PersistReservation stores a confirmed reservation. Saving the same
// (name, date, time) again is treated as success, so a retried
// confirmation never creates a duplicate booking.
func (s *Store) PersistReservation(ctx context.Context, res dialog.Reservation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM reservations r
		JOIN customers c ON r.customer_id = c.id
		WHERE c.name = ? AND r.reservation_date = ? AND r.reservation_time = ?`,
		res.Name, res.Date, res.Time).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to check for existing reservation: %w", err)
	}
	if existing > 0 {
		log.Printf("ℹ️ Reservation for %s on %s at %s already exists, skipping", res.Name, res.Date, res.Time)
		return nil
	}

	customerID, err := s.customerID(ctx, tx, res)
	if err != nil {
		return err
	}

	partySize := 2
	if n, err := strconv.Atoi(res.PartySize); err == nil && n > 0 {
		partySize = n
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO reservations (customer_id, reservation_date, reservation_time, party_size, special_requests)
		VALUES (?, ?, ?, ?, ?)`,
		customerID, res.Date, res.Time, partySize, "")
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}

	id, _ := result.LastInsertId()
	log.Printf("💾 Created reservation %d for customer %d: %s on %s at %s", id, customerID, res.Name, res.Date, res.Time)
	return nil
}

// customerID finds the customer by name or creates one. Known customers
// get their phone and email refreshed when the call collected them.
func (s *Store) customerID(ctx context.Context, tx *sql.Tx, res dialog.Reservation) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM customers WHERE name = ?`, res.Name).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		result, err := tx.ExecContext(ctx,
			`INSERT INTO customers (name, phone, email) VALUES (?, ?, ?)`,
			res.Name, res.Phone, res.Email)
		if err != nil {
			return 0, fmt.Errorf("failed to create customer: %w", err)
		}
		return result.LastInsertId()
	case err != nil:
		return 0, fmt.Errorf("failed to look up customer: %w", err)
	}

	if res.Phone != "" || res.Email != "" {
		if _, err := tx.ExecContext(ctx, `
			UPDATE customers
			SET phone = CASE WHEN ? != '' THEN ? ELSE phone END,
			    email = CASE WHEN ? != '' THEN ? ELSE email END
			WHERE id = ?`,
			res.Phone, res.Phone, res.Email, res.Email, id); err != nil {
			return 0, fmt.Errorf("failed to update customer: %w", err)
		}
	}
	return id, nil
}

// Entry is one stored reservation joined with its customer.
type Entry struct {
	ID           int64  `json:"id"`
	CustomerName string `json:"customer_name"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	PartySize    int    `json:"party_size"`
}

// ReservationsOn lists the reservations for one date, ordered by time.
func (s *Store) ReservationsOn(ctx context.Context, date string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, c.name, r.reservation_date, r.reservation_time, r.party_size
		FROM reservations r
		JOIN customers c ON r.customer_id = c.id
		WHERE r.reservation_date = ?
		ORDER BY r.reservation_time`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CustomerName, &e.Date, &e.Time, &e.PartySize); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
