package sqlite

func (s Storage) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR NOT NULL PRIMARY KEY,
		auth TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		key VARCHAR NOT NULL PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at VARCHAR NOT NULL DEFAULT ""
	)`,
}
