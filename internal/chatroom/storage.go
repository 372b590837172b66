package chatroom

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/neo-mofox/webui/internal/domain"
)

// Platform is the synthetic platform name used for chatroom personas. The bot
// core treats it like any other chat platform.
const Platform = "webui"

// PersonID derives the bot core's person key for a chatroom user.
func PersonID(userID string) string {
	return Platform + ":" + userID
}

// Snapshot is the on-disk record of a virtual user: identity plus the initial
// persona the user can be reset back to. The live impression lives in the
// person table and evolves as the bot talks to the persona.
type Snapshot struct {
	UserID              string               `json:"user_id"`
	Nickname            string               `json:"nickname"`
	Avatar              string               `json:"avatar"`
	CreatedAt           float64              `json:"created_at"`
	InitImpression      string               `json:"init_impression"`
	InitShortImpression string               `json:"init_short_impression"`
	InitAttitude        int                  `json:"init_attitude"`
	InitMemoryPoints    []domain.MemoryPoint `json:"init_memory_points"`
}

// User is the merged view returned to the UI: snapshot identity plus the
// current impression from the person table.
type User struct {
	UserID          string               `json:"user_id"`
	PersonID        string               `json:"person_id"`
	Nickname        string               `json:"nickname"`
	Avatar          string               `json:"avatar"`
	Impression      string               `json:"impression"`
	ShortImpression string               `json:"short_impression"`
	Attitude        int                  `json:"attitude"`
	MemoryPoints    []domain.MemoryPoint `json:"memory_points"`
	CreatedAt       float64              `json:"created_at"`
	UpdatedAt       float64              `json:"updated_at"`
}

// Storage manages virtual chatroom users. Each user is one JSON file under
// the users directory; the matching person row is kept in sync so the bot
// core sees the persona.
type Storage struct {
	mu      sync.Mutex
	fs      afero.Fs
	dir     string
	persons domain.PersonRepository
}

// NewStorage creates a virtual user store rooted at dir.
func NewStorage(fs afero.Fs, dir string, persons domain.PersonRepository) *Storage {
	return &Storage{fs: fs, dir: dir, persons: persons}
}

func (s *Storage) path(userID string) string {
	return filepath.Join(s.dir, userID+".json")
}

func (s *Storage) readSnapshot(userID string) (*Snapshot, error) {
	data, err := afero.ReadFile(s.fs, s.path(userID))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("corrupt user snapshot %s: %w", userID, err)
	}
	return &snap, nil
}

func (s *Storage) writeSnapshot(snap *Snapshot) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create user dir: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user snapshot: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path(snap.UserID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write user snapshot: %w", err)
	}
	return nil
}

// merge overlays the live person row onto the snapshot. A missing row falls
// back to the init persona so a half-synced user still renders.
func (s *Storage) merge(ctx context.Context, snap *Snapshot) User {
	u := User{
		UserID:          snap.UserID,
		PersonID:        PersonID(snap.UserID),
		Nickname:        snap.Nickname,
		Avatar:          snap.Avatar,
		Impression:      snap.InitImpression,
		ShortImpression: snap.InitShortImpression,
		Attitude:        snap.InitAttitude,
		MemoryPoints:    snap.InitMemoryPoints,
		CreatedAt:       snap.CreatedAt,
	}
	person, err := s.persons.Get(ctx, Platform, snap.UserID)
	if err != nil {
		return u
	}
	u.Nickname = person.Nickname
	u.Avatar = person.Avatar
	u.Impression = person.Impression
	u.ShortImpression = person.ShortImpression
	u.Attitude = person.Attitude
	u.MemoryPoints = person.MemoryPoints
	u.UpdatedAt = person.UpdatedAt
	return u
}

// List returns all virtual users, oldest first.
func (s *Storage) List(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := afero.DirExists(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat user dir: %w", err)
	}
	if !exists {
		return []User{}, nil
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read user dir: %w", err)
	}

	users := make([]User, 0, len(entries))
	for _, fi := range entries {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), ".json") {
			continue
		}
		snap, err := s.readSnapshot(strings.TrimSuffix(fi.Name(), ".json"))
		if err != nil {
			continue
		}
		users = append(users, s.merge(ctx, snap))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt < users[j].CreatedAt })
	return users, nil
}

// Get returns one merged user.
func (s *Storage) Get(ctx context.Context, userID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.readSnapshot(userID)
	if err != nil {
		return nil, err
	}
	u := s.merge(ctx, snap)
	return &u, nil
}

// CreateParams describes a new virtual user.
type CreateParams struct {
	UserID          string               `json:"user_id" validate:"required"`
	Nickname        string               `json:"nickname" validate:"required"`
	Avatar          string               `json:"avatar"`
	Impression      string               `json:"impression"`
	ShortImpression string               `json:"short_impression"`
	Attitude        int                  `json:"attitude"`
	MemoryPoints    []domain.MemoryPoint `json:"memory_points"`
}

// Create writes the snapshot and the matching person row.
// Returns domain.ErrAlreadyExists when the user id is taken.
func (s *Storage) Create(ctx context.Context, p CreateParams) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readSnapshot(p.UserID); err == nil {
		return nil, domain.ErrAlreadyExists
	}

	now := unixNow()
	snap := &Snapshot{
		UserID:              p.UserID,
		Nickname:            p.Nickname,
		Avatar:              p.Avatar,
		CreatedAt:           now,
		InitImpression:      p.Impression,
		InitShortImpression: p.ShortImpression,
		InitAttitude:        p.Attitude,
		InitMemoryPoints:    p.MemoryPoints,
	}
	if err := s.writeSnapshot(snap); err != nil {
		return nil, err
	}

	person := &domain.Person{
		PersonID:        PersonID(p.UserID),
		Platform:        Platform,
		UserID:          p.UserID,
		Nickname:        p.Nickname,
		Avatar:          p.Avatar,
		Impression:      p.Impression,
		ShortImpression: p.ShortImpression,
		Attitude:        p.Attitude,
		MemoryPoints:    p.MemoryPoints,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.persons.Create(ctx, person); err != nil {
		return nil, fmt.Errorf("failed to sync user to person table: %w", err)
	}

	u := s.merge(ctx, snap)
	return &u, nil
}

// UpdateParams is a partial update; nil fields are left unchanged.
type UpdateParams struct {
	Nickname        *string               `json:"nickname"`
	Avatar          *string               `json:"avatar"`
	Impression      *string               `json:"impression"`
	ShortImpression *string               `json:"short_impression"`
	Attitude        *int                  `json:"attitude"`
	MemoryPoints    *[]domain.MemoryPoint `json:"memory_points"`
}

// Update applies a partial update to the person row. Identity fields also
// update the snapshot so the two stay consistent.
func (s *Storage) Update(ctx context.Context, userID string, p UpdateParams) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.readSnapshot(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": unixNow()}
	if p.Nickname != nil {
		snap.Nickname = *p.Nickname
		updates["nickname"] = *p.Nickname
	}
	if p.Avatar != nil {
		snap.Avatar = *p.Avatar
		updates["avatar"] = *p.Avatar
	}
	if p.Impression != nil {
		updates["impression"] = *p.Impression
	}
	if p.ShortImpression != nil {
		updates["short_impression"] = *p.ShortImpression
	}
	if p.Attitude != nil {
		updates["attitude"] = *p.Attitude
	}
	if p.MemoryPoints != nil {
		updates["memory_points"] = *p.MemoryPoints
	}

	if p.Nickname != nil || p.Avatar != nil {
		if err := s.writeSnapshot(snap); err != nil {
			return nil, err
		}
	}
	if err := s.persons.Update(ctx, Platform, userID, updates); err != nil {
		return nil, fmt.Errorf("failed to update person row: %w", err)
	}

	u := s.merge(ctx, snap)
	return &u, nil
}

// Reset restores the user's initial persona in the person table.
func (s *Storage) Reset(ctx context.Context, userID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.readSnapshot(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"nickname":         snap.Nickname,
		"avatar":           snap.Avatar,
		"impression":       snap.InitImpression,
		"short_impression": snap.InitShortImpression,
		"attitude":         snap.InitAttitude,
		"memory_points":    snap.InitMemoryPoints,
		"updated_at":       unixNow(),
	}
	if err := s.persons.Update(ctx, Platform, userID, updates); err != nil {
		return nil, fmt.Errorf("failed to reset person row: %w", err)
	}

	u := s.merge(ctx, snap)
	return &u, nil
}

// Delete removes the snapshot and the person row.
func (s *Storage) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.readSnapshot(userID); err != nil {
		return err
	}
	if err := s.fs.Remove(s.path(userID)); err != nil {
		return fmt.Errorf("failed to delete user snapshot: %w", err)
	}
	if err := s.persons.Delete(ctx, Platform, userID); err != nil {
		return fmt.Errorf("failed to delete person row: %w", err)
	}
	return nil
}

// Copyable lists person rows from real platforms that can seed a new virtual
// user.
func (s *Storage) Copyable(ctx context.Context) ([]domain.Person, error) {
	return s.persons.ListOthers(ctx, Platform)
}

func unixNow() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
