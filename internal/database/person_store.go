package database

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/neo-mofox/webui/internal/domain"
)

// PersonStore implements domain.PersonRepository on SurrealDB.
type PersonStore struct {
	db *surrealdb.DB
}

// NewPersonStore creates a person repository backed by the given connection.
func NewPersonStore(db *surrealdb.DB) *PersonStore {
	return &PersonStore{db: db}
}

func (s *PersonStore) Get(ctx context.Context, platform, userID string) (*domain.Person, error) {
	query := "SELECT * FROM person WHERE platform = $platform AND user_id = $user_id"
	params := map[string]any{"platform": platform, "user_id": userID}
	person, err := QueryOne[domain.Person](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get person %s/%s: %w", platform, userID, err)
	}
	if person == nil {
		return nil, domain.ErrNotFound
	}
	return person, nil
}

func (s *PersonStore) Create(ctx context.Context, person *domain.Person) error {
	if _, err := surrealdb.Create[domain.Person](ctx, s.db, "person", person); err != nil {
		return fmt.Errorf("failed to create person: %w", err)
	}
	return nil
}

func (s *PersonStore) Update(ctx context.Context, platform, userID string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	// Build the SET clause from the allowed update keys only; values ride in
	// as query parameters.
	set := ""
	params := map[string]any{"platform": platform, "user_id": userID}
	for _, field := range []string{"nickname", "avatar", "impression", "short_impression", "attitude", "memory_points", "updated_at"} {
		val, ok := updates[field]
		if !ok {
			continue
		}
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $set_%s", field, field)
		params["set_"+field] = val
	}
	if set == "" {
		return nil
	}

	query := fmt.Sprintf("UPDATE person SET %s WHERE platform = $platform AND user_id = $user_id", set)
	if err := Execute(ctx, s.db, query, params); err != nil {
		return fmt.Errorf("failed to update person %s/%s: %w", platform, userID, err)
	}
	return nil
}

func (s *PersonStore) Delete(ctx context.Context, platform, userID string) error {
	query := "DELETE FROM person WHERE platform = $platform AND user_id = $user_id"
	params := map[string]any{"platform": platform, "user_id": userID}
	if err := Execute(ctx, s.db, query, params); err != nil {
		return fmt.Errorf("failed to delete person %s/%s: %w", platform, userID, err)
	}
	return nil
}

func (s *PersonStore) ListOthers(ctx context.Context, excludePlatform string) ([]domain.Person, error) {
	query := "SELECT * FROM person WHERE platform != $platform"
	persons, err := Query[domain.Person](ctx, s.db, query, map[string]any{"platform": excludePlatform})
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	return persons, nil
}

func (s *PersonStore) Count(ctx context.Context, platform string) (int, error) {
	query := "SELECT count() AS total FROM person WHERE platform = $platform GROUP ALL"
	row, err := QueryOne[countRow](ctx, s.db, query, map[string]any{"platform": platform})
	if err != nil {
		return 0, fmt.Errorf("failed to count persons: %w", err)
	}
	if row == nil {
		return 0, nil
	}
	return row.Total, nil
}
