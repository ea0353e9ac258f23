package domain

import "time"

const (
	// AnonymousUser is the reserved login of the unauthenticated principal.
	// It never shows up in managed-user listings.
	AnonymousUser = "anonymoususer"

	DefaultLangKey = "en"
)

type (
	Login = string
	Email = string
)

// User is the account record. ActivationKey and ResetKey are empty when
// absent; ResetKey and ResetDate are set and cleared together.
type User struct {
	Id            int64
	Login         Login
	PasswordHash  string
	FirstName     string
	LastName      string
	Email         Email
	ImageUrl      string
	LangKey       string
	Activated     bool
	ActivationKey string
	ResetKey      string
	ResetDate     *time.Time
	CreatedDate   time.Time
	Authorities   []string
}

// PersistentToken is a remember-me credential series. It references its
// owner by id only; the User aggregate does not embed its tokens.
type PersistentToken struct {
	Series    string
	UserId    int64
	TokenDate time.Time
}

// Registration carries the self-service signup fields.
type Registration struct {
	Login     string `json:"login" validate:"required"`
	Password  string `json:"password" validate:"required,min=4"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	ImageUrl  string `json:"image_url"`
	LangKey   string `json:"lang_key"`
}

// UserUpdate is the administrative create/update payload. On update the
// authority set replaces the stored one wholesale.
type UserUpdate struct {
	Id          int64    `json:"id"`
	Login       string   `json:"login" validate:"required"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email" validate:"required,email"`
	ImageUrl    string   `json:"image_url"`
	Activated   bool     `json:"activated"`
	LangKey     string   `json:"lang_key"`
	Authorities []string `json:"authorities"`
}
