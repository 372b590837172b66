package chatroom_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neo-mofox/webui/internal/chatroom"
	"github.com/neo-mofox/webui/internal/domain"
)

// fakePersons is an in-memory PersonRepository keyed by platform:user_id.
type fakePersons struct {
	rows map[string]*domain.Person
}

func newFakePersons() *fakePersons {
	return &fakePersons{rows: make(map[string]*domain.Person)}
}

func (f *fakePersons) key(platform, userID string) string { return platform + ":" + userID }

func (f *fakePersons) Get(ctx context.Context, platform, userID string) (*domain.Person, error) {
	p, ok := f.rows[f.key(platform, userID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePersons) Create(ctx context.Context, person *domain.Person) error {
	cp := *person
	f.rows[f.key(person.Platform, person.UserID)] = &cp
	return nil
}

func (f *fakePersons) Update(ctx context.Context, platform, userID string, updates map[string]any) error {
	p, ok := f.rows[f.key(platform, userID)]
	if !ok {
		return domain.ErrNotFound
	}
	for field, value := range updates {
		switch field {
		case "nickname":
			p.Nickname = value.(string)
		case "avatar":
			p.Avatar = value.(string)
		case "impression":
			p.Impression = value.(string)
		case "short_impression":
			p.ShortImpression = value.(string)
		case "attitude":
			p.Attitude = value.(int)
		case "memory_points":
			p.MemoryPoints = value.([]domain.MemoryPoint)
		case "updated_at":
			p.UpdatedAt = value.(float64)
		}
	}
	return nil
}

func (f *fakePersons) Delete(ctx context.Context, platform, userID string) error {
	delete(f.rows, f.key(platform, userID))
	return nil
}

func (f *fakePersons) ListOthers(ctx context.Context, excludePlatform string) ([]domain.Person, error) {
	var out []domain.Person
	for _, p := range f.rows {
		if p.Platform != excludePlatform {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePersons) Count(ctx context.Context, platform string) (int, error) {
	n := 0
	for _, p := range f.rows {
		if p.Platform == platform {
			n++
		}
	}
	return n, nil
}

func newStorage() (*chatroom.Storage, *fakePersons) {
	persons := newFakePersons()
	return chatroom.NewStorage(afero.NewMemMapFs(), "data/chatroom/users", persons), persons
}

func TestCreateSyncsPersonRow(t *testing.T) {
	storage, persons := newStorage()
	ctx := context.Background()

	user, err := storage.Create(ctx, chatroom.CreateParams{
		UserID:     "alice",
		Nickname:   "Alice",
		Impression: "curious tester",
		Attitude:   60,
	})
	require.NoError(t, err)
	assert.Equal(t, "webui:alice", user.PersonID)
	assert.Equal(t, "curious tester", user.Impression)

	row, err := persons.Get(ctx, chatroom.Platform, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", row.Nickname)
	assert.Equal(t, 60, row.Attitude)
}

func TestCreateDuplicateConflicts(t *testing.T) {
	storage, _ := newStorage()
	ctx := context.Background()

	_, err := storage.Create(ctx, chatroom.CreateParams{UserID: "alice", Nickname: "Alice"})
	require.NoError(t, err)

	_, err = storage.Create(ctx, chatroom.CreateParams{UserID: "alice", Nickname: "Again"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestGetMergesLiveImpression(t *testing.T) {
	storage, persons := newStorage()
	ctx := context.Background()

	_, err := storage.Create(ctx, chatroom.CreateParams{
		UserID:     "alice",
		Nickname:   "Alice",
		Impression: "initial",
	})
	require.NoError(t, err)

	// The bot evolves the impression behind the snapshot's back.
	require.NoError(t, persons.Update(ctx, chatroom.Platform, "alice", map[string]any{
		"impression": "grew fond of her",
	}))

	user, err := storage.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "grew fond of her", user.Impression)
}

func TestResetRestoresInitialPersona(t *testing.T) {
	storage, persons := newStorage()
	ctx := context.Background()

	_, err := storage.Create(ctx, chatroom.CreateParams{
		UserID:     "alice",
		Nickname:   "Alice",
		Impression: "initial",
		Attitude:   50,
	})
	require.NoError(t, err)

	require.NoError(t, persons.Update(ctx, chatroom.Platform, "alice", map[string]any{
		"impression": "drifted",
		"attitude":   5,
	}))

	user, err := storage.Reset(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "initial", user.Impression)
	assert.Equal(t, 50, user.Attitude)
}

func TestDeleteRemovesSnapshotAndRow(t *testing.T) {
	storage, persons := newStorage()
	ctx := context.Background()

	_, err := storage.Create(ctx, chatroom.CreateParams{UserID: "alice", Nickname: "Alice"})
	require.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, "alice"))

	_, err = storage.Get(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = persons.Get(ctx, chatroom.Platform, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrdersByCreation(t *testing.T) {
	storage, _ := newStorage()
	ctx := context.Background()

	_, err := storage.Create(ctx, chatroom.CreateParams{UserID: "alice", Nickname: "Alice"})
	require.NoError(t, err)
	_, err = storage.Create(ctx, chatroom.CreateParams{UserID: "bob", Nickname: "Bob"})
	require.NoError(t, err)

	users, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].UserID)
	assert.Equal(t, "bob", users[1].UserID)
}

func TestCopyableExcludesChatroomPlatform(t *testing.T) {
	storage, persons := newStorage()
	ctx := context.Background()

	require.NoError(t, persons.Create(ctx, &domain.Person{
		PersonID: "qq:12345", Platform: "qq", UserID: "12345", Nickname: "RealUser",
	}))
	_, err := storage.Create(ctx, chatroom.CreateParams{UserID: "alice", Nickname: "Alice"})
	require.NoError(t, err)

	copyable, err := storage.Copyable(ctx)
	require.NoError(t, err)
	require.Len(t, copyable, 1)
	assert.Equal(t, "qq", copyable[0].Platform)
}
