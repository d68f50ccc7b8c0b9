package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements Provider for SQLite configuration databases.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens a SQLite configuration database.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return &SQLiteProvider{db: db, dbPath: dbPath}, nil
}

// EnsureSchema creates the configuration tables if they do not exist.
func (s *SQLiteProvider) EnsureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS locations (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT NOT NULL UNIQUE,
			latitude      REAL NOT NULL,
			longitude     REAL NOT NULL,
			time_zone     TEXT NOT NULL,
			above_ground  REAL NOT NULL DEFAULT 0,
			east_distance REAL,
			east_height   REAL,
			west_distance REAL,
			west_height   REAL
		);
		CREATE TABLE IF NOT EXISTS subjects (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			location_id INTEGER NOT NULL REFERENCES locations(id),
			name        TEXT NOT NULL,
			rule        TEXT NOT NULL,
			event       TEXT,
			elevation   REAL,
			direction   TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create configuration schema: %w", err)
	}
	return nil
}

// LoadConfig loads the complete configuration from the database.
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	cfg := &ConfigData{}

	var listenAddr sql.NullString
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = 'http_listen_addr'`).Scan(&listenAddr)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	cfg.HTTP.ListenAddr = listenAddr.String

	locations, err := s.GetLocations()
	if err != nil {
		return nil, err
	}
	cfg.Locations = locations
	return cfg, nil
}

// GetLocations returns the configured locations with their subjects.
func (s *SQLiteProvider) GetLocations() ([]LocationData, error) {
	rows, err := s.db.Query(`
		SELECT id, name, latitude, longitude, time_zone, above_ground,
		       east_distance, east_height, west_distance, west_height
		FROM locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []LocationData
	ids := make(map[string]int64)
	for rows.Next() {
		var (
			id                   int64
			loc                  LocationData
			eastDist, eastHeight sql.NullFloat64
			westDist, westHeight sql.NullFloat64
		)
		if err := rows.Scan(&id, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.TimeZone,
			&loc.AboveGround, &eastDist, &eastHeight, &westDist, &westHeight); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		if eastDist.Valid {
			loc.EastObstruction = &ObstructionData{Distance: eastDist.Float64, Height: eastHeight.Float64}
		}
		if westDist.Valid {
			loc.WestObstruction = &ObstructionData{Distance: westDist.Float64, Height: westHeight.Float64}
		}
		ids[loc.Name] = id
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading locations: %w", err)
	}

	for i := range locations {
		subjects, err := s.getSubjects(ids[locations[i].Name])
		if err != nil {
			return nil, err
		}
		locations[i].Subjects = subjects
	}
	return locations, nil
}

func (s *SQLiteProvider) getSubjects(locationID int64) ([]SubjectData, error) {
	rows, err := s.db.Query(`
		SELECT name, rule, event, elevation, direction
		FROM subjects WHERE location_id = ? ORDER BY id`, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()

	var subjects []SubjectData
	for rows.Next() {
		var (
			sub       SubjectData
			event     sql.NullString
			elevation sql.NullFloat64
			direction sql.NullString
		)
		if err := rows.Scan(&sub.Name, &sub.Rule, &event, &elevation, &direction); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		sub.Event = event.String
		sub.Elevation = elevation.Float64
		sub.Direction = direction.String
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

// IsReadOnly returns false; the SQLite backend can be managed in place.
func (s *SQLiteProvider) IsReadOnly() bool { return false }

// Close closes the database handle.
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
