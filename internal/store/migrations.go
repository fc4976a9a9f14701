package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Detections table - event log of accepted localizations
		`CREATE TABLE IF NOT EXISTS detections (
			id TEXT PRIMARY KEY,
			class TEXT NOT NULL,
			frame INTEGER NOT NULL,
			xmin INTEGER NOT NULL,
			ymin INTEGER NOT NULL,
			xmax INTEGER NOT NULL,
			ymax INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Triggers table - binds an object class to a plugin action
		`CREATE TABLE IF NOT EXISTS triggers (
			id TEXT PRIMARY KEY,
			class TEXT NOT NULL,
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_detections_class ON detections(class)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_created_at ON detections(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_triggers_class ON triggers(class)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
