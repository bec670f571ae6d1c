package users

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var ErrNotFound = errors.New("user not found")

// Service provides business logic for user operations
type Service struct {
	storage Storage
	locales localeResolver
}

// NewService creates a new user service
func NewService(storage Storage, locales localeResolver) *Service {
	return &Service{
		storage: storage,
		locales: locales,
	}
}

// GetOrCreate returns the user for profile.TelegramID, creating the record on
// first contact and refreshing the display name fields when they changed.
func (s *Service) GetOrCreate(ctx context.Context, profile Profile) (*User, error) {
	existing, err := s.storage.GetUser(ctx, GetCriteria{TelegramID: lo.ToPtr(profile.TelegramID)})
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}

	if existing == nil {
		created, err := s.storage.CreateUser(ctx, User{
			TelegramID: profile.TelegramID,
			Username:   profile.Username,
			FirstName:  profile.FirstName,
			LastName:   profile.LastName,
			Language:   s.locales.Resolve(""),
		})
		if err != nil {
			return nil, errors.Wrap(err, "create user")
		}
		return s.normalize(created), nil
	}

	if existing.Username == profile.Username &&
		existing.FirstName == profile.FirstName &&
		existing.LastName == profile.LastName {
		return s.normalize(existing), nil
	}

	updated, err := s.storage.UpdateUser(ctx, GetCriteria{ID: lo.ToPtr(existing.ID)}, UpdateParams{
		Username:  lo.ToPtr(profile.Username),
		FirstName: lo.ToPtr(profile.FirstName),
		LastName:  lo.ToPtr(profile.LastName),
	})
	if err != nil {
		return nil, errors.Wrap(err, "update user profile")
	}
	return s.normalize(updated), nil
}

func (s *Service) GetByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	user, err := s.storage.GetUser(ctx, GetCriteria{TelegramID: lo.ToPtr(telegramID)})
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return s.normalize(user), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.storage.GetUser(ctx, GetCriteria{ID: lo.ToPtr(id)})
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return s.normalize(user), nil
}

// SetLanguage stores the chosen locale. Unknown codes are replaced by the default one.
func (s *Service) SetLanguage(ctx context.Context, userID int64, lang string) (*User, error) {
	user, err := s.storage.UpdateUser(ctx, GetCriteria{ID: lo.ToPtr(userID)}, UpdateParams{
		Language:         lo.ToPtr(s.locales.Resolve(lang)),
		LanguageSelected: lo.ToPtr(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "set language")
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return s.normalize(user), nil
}

func (s *Service) AcceptDisclaimer(ctx context.Context, userID int64) error {
	user, err := s.storage.UpdateUser(ctx, GetCriteria{ID: lo.ToPtr(userID)}, UpdateParams{
		AcceptedDisclaimer: lo.ToPtr(true),
	})
	if err != nil {
		return errors.Wrap(err, "accept disclaimer")
	}
	if user == nil {
		return ErrNotFound
	}
	return nil
}

func (s *Service) normalize(u *User) *User {
	u.Language = s.locales.Resolve(u.Language)
	return u
}
