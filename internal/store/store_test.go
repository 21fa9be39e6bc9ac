package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"parley/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenAt(filepath.Join(t.TempDir(), "parley.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateAndGetProfile(t *testing.T) {
	db := openTestDB(t)

	id, err := CreateProfile(db, models.ApiProfile{
		ServiceName: "OpenRouter",
		BaseURL:     "https://openrouter.ai/api/v1",
		APIKey:      "sk-test",
		Models:      "gpt-a,gpt-b",
	}, 1700000000)
	require.NoError(t, err)
	require.NotZero(t, id)

	p, err := GetProfileByID(db, id)
	require.NoError(t, err)
	assert.Equal(t, "OpenRouter", p.ServiceName)
	assert.Equal(t, "https://openrouter.ai/api/v1", p.BaseURL)
	assert.Equal(t, "sk-test", p.APIKey)
	assert.Equal(t, []string{"gpt-a", "gpt-b"}, p.ModelList())
}

func TestGetProfileNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := GetProfileByID(db, 42)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestListProfilesOrderedByCreation(t *testing.T) {
	db := openTestDB(t)

	_, err := CreateProfile(db, models.ApiProfile{ServiceName: "First", BaseURL: "https://a.example"}, 100)
	require.NoError(t, err)
	_, err = CreateProfile(db, models.ApiProfile{ServiceName: "Second", BaseURL: "https://b.example"}, 200)
	require.NoError(t, err)

	profiles, err := ListProfiles(db)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "First", profiles[0].ServiceName)
	assert.Equal(t, "Second", profiles[1].ServiceName)
}

func TestUpdateProfileReplacesWholesale(t *testing.T) {
	db := openTestDB(t)

	id, err := CreateProfile(db, models.ApiProfile{
		ServiceName: "Old",
		BaseURL:     "https://old.example",
		APIKey:      "k1",
		Models:      "m1",
	}, 100)
	require.NoError(t, err)

	err = UpdateProfile(db, models.ApiProfile{
		ID:          id,
		ServiceName: "New",
		BaseURL:     "https://new.example",
		APIKey:      "k2",
		Models:      "m2,m3",
	})
	require.NoError(t, err)

	p, err := GetProfileByID(db, id)
	require.NoError(t, err)
	assert.Equal(t, "New", p.ServiceName)
	assert.Equal(t, "https://new.example", p.BaseURL)
	assert.Equal(t, "k2", p.APIKey)
	assert.Equal(t, "m2,m3", p.Models)
}

func TestUpdateMissingProfile(t *testing.T) {
	db := openTestDB(t)

	err := UpdateProfile(db, models.ApiProfile{ID: 7, ServiceName: "Ghost"})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestDeleteProfile(t *testing.T) {
	db := openTestDB(t)

	id, err := CreateProfile(db, models.ApiProfile{ServiceName: "Doomed", BaseURL: "https://x.example"}, 100)
	require.NoError(t, err)

	require.NoError(t, DeleteProfile(db, id))

	_, err = GetProfileByID(db, id)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	assert.ErrorIs(t, DeleteProfile(db, id), ErrProfileNotFound)
}

func TestSeedDefaultProfile(t *testing.T) {
	db := openTestDB(t)

	t.Setenv("OPENROUTER_API_KEY", "sk-seed")

	id, err := SeedDefaultProfile(db, 100)
	require.NoError(t, err)
	require.NotZero(t, id)

	p, err := GetProfileByID(db, id)
	require.NoError(t, err)
	assert.Equal(t, "OpenRouter", p.ServiceName)
	assert.Equal(t, "sk-seed", p.APIKey)
	assert.NotEmpty(t, p.ModelList())

	// Non-empty table is left alone.
	id2, err := SeedDefaultProfile(db, 200)
	require.NoError(t, err)
	assert.Zero(t, id2)
}

func TestSeedWithoutKeyDoesNothing(t *testing.T) {
	db := openTestDB(t)

	t.Setenv("OPENROUTER_API_KEY", "")

	id, err := SeedDefaultProfile(db, 100)
	require.NoError(t, err)
	assert.Zero(t, id)

	profiles, err := ListProfiles(db)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
