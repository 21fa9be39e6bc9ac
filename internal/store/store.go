package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"parley/internal/models"
	_ "modernc.org/sqlite"
)

// ErrProfileNotFound is returned when a profile id has no row, typically
// because it was deleted from another part of the app since last fetch.
var ErrProfileNotFound = errors.New("profile not found")

func Open() (*sql.DB, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return nil, err
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dbDir := filepath.Join(configDir, "parley")
	if err := os.MkdirAll(dbDir, 0o700); err != nil {
		return nil, err
	}

	return OpenAt(filepath.Join(dbDir, "parley.db"))
}

func OpenAt(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			service_name TEXT NOT NULL,
			base_url TEXT NOT NULL,
			api_key TEXT NOT NULL DEFAULT '',
			models TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_created_at ON profiles(created_at ASC);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

func ListProfiles(db *sql.DB) ([]models.ApiProfile, error) {
	rows, err := db.Query(
		"SELECT id, service_name, base_url, api_key, models FROM profiles ORDER BY created_at ASC, id ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []models.ApiProfile{}
	for rows.Next() {
		var p models.ApiProfile
		if err := rows.Scan(&p.ID, &p.ServiceName, &p.BaseURL, &p.APIKey, &p.Models); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func GetProfileByID(db *sql.DB, id int64) (models.ApiProfile, error) {
	var p models.ApiProfile
	err := db.QueryRow(
		"SELECT id, service_name, base_url, api_key, models FROM profiles WHERE id = ?",
		id,
	).Scan(&p.ID, &p.ServiceName, &p.BaseURL, &p.APIKey, &p.Models)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ApiProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.ApiProfile{}, err
	}
	return p, nil
}

func CreateProfile(db *sql.DB, p models.ApiProfile, nowUnix int64) (int64, error) {
	res, err := db.Exec(
		"INSERT INTO profiles(service_name, base_url, api_key, models, created_at) VALUES(?, ?, ?, ?, ?)",
		p.ServiceName,
		p.BaseURL,
		p.APIKey,
		p.Models,
		nowUnix,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateProfile replaces the stored row wholesale with the given profile.
func UpdateProfile(db *sql.DB, p models.ApiProfile) error {
	res, err := db.Exec(
		"UPDATE profiles SET service_name = ?, base_url = ?, api_key = ?, models = ? WHERE id = ?",
		p.ServiceName,
		p.BaseURL,
		p.APIKey,
		p.Models,
		p.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func DeleteProfile(db *sql.DB, id int64) error {
	res, err := db.Exec("DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// DefaultModelsCSV is the model roster seeded into a first-run profile.
const DefaultModelsCSV = "google/gemini-3-flash-preview,x-ai/grok-4.1-fast,deepseek/deepseek-v3.2,z-ai/glm-4.7,openai/gpt-oss-120b:free"

// SeedDefaultProfile inserts an OpenRouter profile when the table is empty
// and OPENROUTER_API_KEY is set, so a fresh install can chat without opening
// the settings flow first. Returns the id of the seeded profile, or 0 when
// nothing was inserted.
func SeedDefaultProfile(db *sql.DB, nowUnix int64) (int64, error) {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM profiles").Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return 0, nil
	}

	return CreateProfile(db, models.ApiProfile{
		ServiceName: "OpenRouter",
		BaseURL:     "https://openrouter.ai/api/v1",
		APIKey:      apiKey,
		Models:      DefaultModelsCSV,
	}, nowUnix)
}
