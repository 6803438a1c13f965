package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"sysweather/internal/advisor"
)

// ErrProfileNotFound is returned when a named profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is a named optimization profile: the focus it was created with and
// the suggestions captured at creation time. Applying a profile replays its
// automatable suggestions through the advisor's two-phase Apply.
type Profile struct {
	Name        string               `json:"name"`
	Focus       string               `json:"focus"`
	CreatedAt   time.Time            `json:"created_at"`
	AppliedAt   time.Time            `json:"applied_at,omitzero"`
	Suggestions []advisor.Suggestion `json:"suggestions,omitempty"`
}

// LoadProfiles reads all saved profiles, falling back to none.
func (s *Store) LoadProfiles() map[string]Profile {
	profiles := make(map[string]Profile)
	s.readJSON(profilesFile, &profiles)
	return profiles
}

// SaveProfile creates or replaces a named profile.
func (s *Store) SaveProfile(p Profile) error {
	if p.Name == "" {
		return fmt.Errorf("store: profile name required")
	}
	profiles := s.LoadProfiles()
	profiles[p.Name] = p
	return s.writeJSON(profilesFile, profiles)
}

// GetProfile looks up a profile by name.
func (s *Store) GetProfile(name string) (Profile, error) {
	profiles := s.LoadProfiles()
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("store: %q: %w", name, ErrProfileNotFound)
	}
	return p, nil
}

// MarkApplied stamps a profile's last application time.
func (s *Store) MarkApplied(name string, at time.Time) error {
	profiles := s.LoadProfiles()
	p, ok := profiles[name]
	if !ok {
		return fmt.Errorf("store: %q: %w", name, ErrProfileNotFound)
	}
	p.AppliedAt = at
	profiles[name] = p
	return s.writeJSON(profilesFile, profiles)
}

// ListProfiles returns all profiles sorted by name.
func (s *Store) ListProfiles() []Profile {
	profiles := s.LoadProfiles()
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
