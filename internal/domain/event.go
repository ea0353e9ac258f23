package domain

// UserChangedEvent is the outbound payload published after an
// administrative update. It mirrors the externally visible fields of the
// post-update record and is never persisted.
type UserChangedEvent struct {
	Login       string   `json:"login"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	ImageUrl    string   `json:"image_url"`
	Activated   bool     `json:"activated"`
	LangKey     string   `json:"lang_key"`
	Authorities []string `json:"authorities"`
}

// UserChanged builds the event from a user record.
func UserChanged(u *User) UserChangedEvent {
	return UserChangedEvent{
		Login:       u.Login,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		ImageUrl:    u.ImageUrl,
		Activated:   u.Activated,
		LangKey:     u.LangKey,
		Authorities: u.Authorities,
	}
}
