package session

import "parley/internal/models"

// ReconcileProfile keeps the selected profile consistent with the live store
// contents. A selection that no longer exists falls back to the first
// profile; no profiles at all is ErrNoProfiles. Must run before dispatching
// a request.
func ReconcileProfile(profiles []models.ApiProfile, currentID int64) (models.ApiProfile, error) {
	if len(profiles) == 0 {
		return models.ApiProfile{}, ErrNoProfiles
	}
	for _, p := range profiles {
		if p.ID == currentID {
			return p, nil
		}
	}
	return profiles[0], nil
}

// ReconcileModel keeps the selected model consistent with the active
// profile's model list, falling back to the profile's first model when the
// selection is absent.
func ReconcileModel(profile models.ApiProfile, current string) string {
	for _, m := range profile.ModelList() {
		if m == current {
			return current
		}
	}
	return profile.FirstModel()
}
