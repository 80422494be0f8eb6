package quota

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// referenceZone is the provider's quota reset timezone. "Today" for reset
// bookkeeping is always evaluated here, not in the local zone.
const referenceZone = "America/Los_Angeles"

// rateLimitCooldown is how long a project sits out after repeated rate-limit
// hits before rotation considers it again.
const rateLimitCooldown = 5 * time.Minute

// ProjectState is per-project quota bookkeeping for multi-account rotation.
// RateLimitHits and CooldownUntil are process-lifetime signals and are not
// persisted.
type ProjectState struct {
	Name          string `json:"name"`
	QuotaUsed     int    `json:"quota_used"`
	LastResetDate string `json:"last_reset_date"` // YYYY-MM-DD in the reference zone
	IsExhausted   bool   `json:"is_exhausted"`
	LastError     string `json:"last_error,omitempty"`

	RateLimitHits int       `json:"-"`
	CooldownUntil time.Time `json:"-"`
}

// rotationFile is the persisted JSON shape.
type rotationFile struct {
	CurrentIndex int             `json:"current_index"`
	Projects     []*ProjectState `json:"projects"`
}

// Rotation tracks which configured project currently serves write calls and
// rotates to the next non-exhausted project when one runs out of quota.
type Rotation struct {
	path     string
	current  int
	projects []*ProjectState
	now      func() time.Time
}

// LoadRotation reads rotation state from path, creating fresh state for the
// configured project names when the file is absent. Projects whose persisted
// last_reset_date is not "today" in the reference zone get their quota reset.
func LoadRotation(path string, names []string) (*Rotation, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no projects configured")
	}

	r := &Rotation{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// First run: fresh state for every configured project.
	case err != nil:
		return nil, fmt.Errorf("failed to read rotation state: %w", err)
	default:
		var file rotationFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse rotation state: %w", err)
		}
		r.current = file.CurrentIndex
		r.projects = file.Projects
	}

	r.reconcile(names)
	r.resetStaleDays()
	return r, nil
}

// reconcile aligns persisted projects with the configured names, keeping
// state for names that survive and creating fresh entries for new ones.
func (r *Rotation) reconcile(names []string) {
	byName := make(map[string]*ProjectState, len(r.projects))
	for _, p := range r.projects {
		byName[p.Name] = p
	}

	projects := make([]*ProjectState, 0, len(names))
	for _, name := range names {
		if p, ok := byName[name]; ok {
			projects = append(projects, p)
		} else {
			projects = append(projects, &ProjectState{Name: name, LastResetDate: r.today()})
		}
	}
	r.projects = projects
	if r.current < 0 || r.current >= len(r.projects) {
		r.current = 0
	}
}

// resetStaleDays clears usage for projects whose persisted reset date is not
// today in the reference zone.
func (r *Rotation) resetStaleDays() {
	today := r.today()
	for _, p := range r.projects {
		if p.LastResetDate != today {
			p.QuotaUsed = 0
			p.IsExhausted = false
			p.LastError = ""
			p.LastResetDate = today
		}
	}
}

func (r *Rotation) today() string {
	loc, err := time.LoadLocation(referenceZone)
	if err != nil {
		loc = time.UTC
	}
	return r.now().In(loc).Format("2006-01-02")
}

// Current returns the active project.
func (r *Rotation) Current() *ProjectState {
	return r.projects[r.current]
}

// Projects returns all tracked projects in configured order.
func (r *Rotation) Projects() []*ProjectState {
	return r.projects
}

// RecordUsage charges quota units against the active project and persists.
func (r *Rotation) RecordUsage(units int) error {
	r.Current().QuotaUsed += units
	return r.Save()
}

// RecordRateLimit notes a rate-limit hit on the active project and, after
// three consecutive hits, puts it in cooldown. Neither signal is persisted.
func (r *Rotation) RecordRateLimit() {
	p := r.Current()
	p.RateLimitHits++
	if p.RateLimitHits >= 3 {
		p.CooldownUntil = r.now().Add(rateLimitCooldown)
	}
}

// MarkExhausted flags the active project as out of quota for the day.
func (r *Rotation) MarkExhausted(lastError string) error {
	p := r.Current()
	p.IsExhausted = true
	p.LastError = lastError
	return r.Save()
}

// Advance rotates to the next usable project (not exhausted, not cooling
// down). Returns false when every other project is unusable, in which case
// the active project is left unchanged.
func (r *Rotation) Advance() bool {
	n := len(r.projects)
	now := r.now()
	for step := 1; step < n; step++ {
		idx := (r.current + step) % n
		p := r.projects[idx]
		if p.IsExhausted {
			continue
		}
		if p.CooldownUntil.After(now) {
			continue
		}
		r.current = idx
		return true
	}
	return false
}

// Save persists the rotation state with owner-only permissions.
func (r *Rotation) Save() error {
	file := rotationFile{CurrentIndex: r.current, Projects: r.projects}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rotation state: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write rotation state: %w", err)
	}
	return nil
}
