package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	users   []*User
	updates int
}

func (m *memoryStorage) CreateUser(_ context.Context, u User) (*User, error) {
	u.ID = int64(len(m.users) + 1)
	m.users = append(m.users, &u)
	cp := u
	return &cp, nil
}

func (m *memoryStorage) find(c GetCriteria) *User {
	for _, u := range m.users {
		if c.ID != nil && u.ID != *c.ID {
			continue
		}
		if c.TelegramID != nil && u.TelegramID != *c.TelegramID {
			continue
		}
		return u
	}
	return nil
}

func (m *memoryStorage) GetUser(_ context.Context, c GetCriteria) (*User, error) {
	u := m.find(c)
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memoryStorage) UpdateUser(_ context.Context, c GetCriteria, p UpdateParams) (*User, error) {
	m.updates++
	u := m.find(c)
	if u == nil {
		return nil, nil
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Language != nil {
		u.Language = *p.Language
	}
	if p.LanguageSelected != nil {
		u.LanguageSelected = *p.LanguageSelected
	}
	if p.AcceptedDisclaimer != nil {
		u.AcceptedDisclaimer = *p.AcceptedDisclaimer
	}
	cp := *u
	return &cp, nil
}

type resolver struct{}

func (resolver) Resolve(lang string) string {
	switch lang {
	case "ru", "en", "th":
		return lang
	}
	return "en"
}

func TestGetOrCreate(t *testing.T) {
	ctx := context.Background()
	store := &memoryStorage{}
	svc := NewService(store, resolver{})

	first, err := svc.GetOrCreate(ctx, Profile{TelegramID: 10, Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "en", first.Language)

	again, err := svc.GetOrCreate(ctx, Profile{TelegramID: 10, Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 0, store.updates)

	renamed, err := svc.GetOrCreate(ctx, Profile{TelegramID: 10, Username: "alice2"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", renamed.Username)
	assert.Len(t, store.users, 1)
}

func TestLanguageAlwaysResolves(t *testing.T) {
	ctx := context.Background()
	store := &memoryStorage{}
	svc := NewService(store, resolver{})

	u, err := svc.GetOrCreate(ctx, Profile{TelegramID: 1})
	require.NoError(t, err)

	u, err = svc.SetLanguage(ctx, u.ID, "th")
	require.NoError(t, err)
	assert.Equal(t, "th", u.Language)
	assert.True(t, u.LanguageSelected)

	u, err = svc.SetLanguage(ctx, u.ID, "klingon")
	require.NoError(t, err)
	assert.Equal(t, "en", u.Language)

	store.users[0].Language = "broken"
	u, err = svc.GetByTelegramID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "en", u.Language)

	_, err = svc.GetByTelegramID(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "@bob", (&User{Username: "bob", FirstName: "Bob"}).DisplayName())
	assert.Equal(t, "Bob Smith", (&User{FirstName: "Bob", LastName: "Smith"}).DisplayName())
	assert.Equal(t, "Bob", (&User{FirstName: "Bob"}).DisplayName())
	assert.Equal(t, "", (&User{}).DisplayName())
}
