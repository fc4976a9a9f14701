package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Detection represents one accepted localization persisted to the event log.
type Detection struct {
	ID        string
	Class     string
	Frame     int
	XMin      int
	YMin      int
	XMax      int
	YMax      int
	CreatedAt time.Time
}

// DetectionRepository provides persistence for detection events.
type DetectionRepository struct {
	db *sql.DB
}

// Detections returns the detection repository for this store.
func (s *Store) Detections() *DetectionRepository {
	return &DetectionRepository{db: s.db}
}

// Create inserts a new detection event into the database.
func (r *DetectionRepository) Create(d *Detection) error {
	d.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO detections (id, class, frame, xmin, ymin, xmax, ymax, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Class, d.Frame, d.XMin, d.YMin, d.XMax, d.YMax, d.CreatedAt,
	)
	return err
}

// GetByID retrieves a detection event by its ID.
func (r *DetectionRepository) GetByID(id string) (*Detection, error) {
	d := &Detection{}

	err := r.db.QueryRow(
		`SELECT id, class, frame, xmin, ymin, xmax, ymax, created_at
		 FROM detections WHERE id = ?`,
		id,
	).Scan(&d.ID, &d.Class, &d.Frame, &d.XMin, &d.YMin, &d.XMax, &d.YMax, &d.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return d, nil
}

// List retrieves the most recent detection events, newest first.
// A limit of 0 returns everything.
func (r *DetectionRepository) List(limit int) ([]*Detection, error) {
	query := `SELECT id, class, frame, xmin, ymin, xmax, ymax, created_at
		 FROM detections ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDetections(rows)
}

// ListByClass retrieves the detection events of one class, newest first.
func (r *DetectionRepository) ListByClass(class string) ([]*Detection, error) {
	rows, err := r.db.Query(
		`SELECT id, class, frame, xmin, ymin, xmax, ymax, created_at
		 FROM detections WHERE class = ? ORDER BY created_at DESC`,
		class,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDetections(rows)
}

// CountByClass returns the number of persisted events per class.
func (r *DetectionRepository) CountByClass() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT class, COUNT(*) FROM detections GROUP BY class`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var class string
		var n int
		if err := rows.Scan(&class, &n); err != nil {
			return nil, err
		}
		counts[class] = n
	}

	return counts, rows.Err()
}

// Delete removes a detection event from the database by its ID.
func (r *DetectionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM detections WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Clear removes every detection event.
func (r *DetectionRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM detections`)
	return err
}

func scanDetections(rows *sql.Rows) ([]*Detection, error) {
	var detections []*Detection
	for rows.Next() {
		d := &Detection{}
		err := rows.Scan(&d.ID, &d.Class, &d.Frame, &d.XMin, &d.YMin, &d.XMax, &d.YMax, &d.CreatedAt)
		if err != nil {
			return nil, err
		}
		detections = append(detections, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detections, nil
}
