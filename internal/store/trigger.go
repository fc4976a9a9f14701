package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Trigger represents a class-to-plugin binding stored in the database.
// When an object of Class is detected, the bound plugin action runs.
type Trigger struct {
	ID         string
	Class      string
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// TriggerRepository provides CRUD operations for triggers.
type TriggerRepository struct {
	db *sql.DB
}

// Triggers returns the trigger repository for this store.
func (s *Store) Triggers() *TriggerRepository {
	return &TriggerRepository{db: s.db}
}

// Create inserts a new trigger into the database.
func (r *TriggerRepository) Create(t *Trigger) error {
	t.CreatedAt = time.Now()

	config := t.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO triggers (id, class, plugin_name, action_name, config, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Class, t.PluginName, t.ActionName, string(config), t.Enabled, t.CreatedAt,
	)
	return err
}

// GetByID retrieves a trigger by its ID.
func (r *TriggerRepository) GetByID(id string) (*Trigger, error) {
	t := &Trigger{}
	var config string
	var enabled int

	err := r.db.QueryRow(
		`SELECT id, class, plugin_name, action_name, config, enabled, created_at
		 FROM triggers WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Class, &t.PluginName, &t.ActionName, &config, &enabled, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	t.Config = json.RawMessage(config)
	t.Enabled = enabled != 0
	return t, nil
}

// ListByClass retrieves the enabled triggers bound to an object class.
// An empty result is normal - most classes have no trigger.
func (r *TriggerRepository) ListByClass(class string) ([]*Trigger, error) {
	rows, err := r.db.Query(
		`SELECT id, class, plugin_name, action_name, config, enabled, created_at
		 FROM triggers WHERE class = ? AND enabled = 1`,
		class,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTriggers(rows)
}

// List retrieves all triggers from the database.
func (r *TriggerRepository) List() ([]*Trigger, error) {
	rows, err := r.db.Query(
		`SELECT id, class, plugin_name, action_name, config, enabled, created_at
		 FROM triggers ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTriggers(rows)
}

// Update updates an existing trigger in the database.
func (r *TriggerRepository) Update(t *Trigger) error {
	config := t.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	enabled := 0
	if t.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE triggers SET class = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		t.Class, t.PluginName, t.ActionName, string(config), enabled, t.ID,
	)
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

// Delete removes a trigger from the database by its ID.
func (r *TriggerRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM triggers WHERE id = ?`, id)
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

func scanTriggers(rows *sql.Rows) ([]*Trigger, error) {
	var triggers []*Trigger
	for rows.Next() {
		t := &Trigger{}
		var config string
		var enabled int

		err := rows.Scan(&t.ID, &t.Class, &t.PluginName, &t.ActionName, &config, &enabled, &t.CreatedAt)
		if err != nil {
			return nil, err
		}

		t.Config = json.RawMessage(config)
		t.Enabled = enabled != 0
		triggers = append(triggers, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return triggers, nil
}
