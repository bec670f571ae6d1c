package users

import "time"

type User struct {
	ID                 int64
	TelegramID         int64
	Username           string
	FirstName          string
	LastName           string
	Language           string
	LanguageSelected   bool
	AcceptedDisclaimer bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DisplayName is what operators see in notifications.
func (u *User) DisplayName() string {
	switch {
	case u.Username != "":
		return "@" + u.Username
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return ""
	}
}

// Profile carries the chat identity fields refreshed on every interaction.
type Profile struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// Критерии для получения пользователя
type GetCriteria struct {
	ID         *int64
	TelegramID *int64
}

// Критерии для списка пользователей
type ListCriteria struct {
	Limit  int
	Offset int
}

// Параметры для обновления пользователя
type UpdateParams struct {
	Username           *string
	FirstName          *string
	LastName           *string
	Language           *string
	LanguageSelected   *bool
	AcceptedDisclaimer *bool
}
