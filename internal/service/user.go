package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trifonnt/accountd/internal/config"
	"github.com/trifonnt/accountd/internal/domain"
	"github.com/trifonnt/accountd/internal/errors"
	"github.com/trifonnt/accountd/internal/logger"
)

// UserStorage is the primary account store. Lookup misses come back as
// 404-class errors (errors.IsNotFound); the service decides per operation
// whether a miss is silent or a caller error.
type UserStorage interface {
	SaveUser(user *domain.User) error // insert when Id == 0, full overwrite otherwise
	UserByLogin(login string) (domain.User, error)
	UserByEmail(email string) (domain.User, error)
	UserByActivationKey(key string) (domain.User, error)
	UserByResetKey(key string) (domain.User, error)
	UserById(id int64) (domain.User, error)
	UsersExcludingLogin(login string, limit, offset int) ([]domain.User, error)
	DeleteUser(user *domain.User) error
}

// AuthorityStorage resolves role labels to persisted authority records.
type AuthorityStorage interface {
	AuthorityByName(name string) (domain.Authority, error)
}

// SearchIndex mirrors user writes and deletes into the secondary index.
type SearchIndex interface {
	Save(user *domain.User) error
	Delete(user *domain.User) error
}

// EventPublisher hands a change notification to the downstream queue.
type EventPublisher interface {
	PublishUserChanged(ctx context.Context, event domain.UserChangedEvent) error
}

// SocialConnections removes a user's linked social accounts on delete.
type SocialConnections interface {
	DeleteConnections(login string) error
}

// PasswordHasher hashes plaintext passwords. Algorithm choice belongs to
// the implementation.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// KeyGenerator produces activation keys, reset keys and the random
// initial password of admin-created accounts.
type KeyGenerator interface {
	ActivationKey() string
	ResetKey() string
	Password() string
}

// IdentityResolver supplies the acting user's login for self-service
// operations.
type IdentityResolver interface {
	CurrentLogin(ctx context.Context) (string, error)
}

// Users owns the account lifecycle rules: activation, password reset,
// create/update/delete and the change-notification publish on
// administrative updates.
type Users struct {
	storage     UserStorage
	authorities AuthorityStorage
	index       SearchIndex
	publisher   EventPublisher
	social      SocialConnections
	hasher      PasswordHasher
	keys        KeyGenerator
	identity    IdentityResolver
	cfg         *config.Public
	validate    *validator.Validate
}

func NewUsers(
	storage UserStorage,
	authorities AuthorityStorage,
	index SearchIndex,
	publisher EventPublisher,
	social SocialConnections,
	hasher PasswordHasher,
	keys KeyGenerator,
	identity IdentityResolver,
	cfg *config.Public,
) *Users {
	return &Users{
		storage:     storage,
		authorities: authorities,
		index:       index,
		publisher:   publisher,
		social:      social,
		hasher:      hasher,
		keys:        keys,
		identity:    identity,
		cfg:         cfg,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// mirror saves the user into the search index. Index failures never roll
// back the primary write; they are logged and dropped.
func (s *Users) mirror(user *domain.User) {
	if err := s.index.Save(user); err != nil {
		logger.Log.Warn("search index save failed",
			"login", user.Login,
			"error", err)
	}
}

// Activate flips the account matching the activation key to activated and
// clears the key. An unknown key returns (nil, nil): whether absence is
// notable is the caller's call.
func (s *Users) Activate(key string) (*domain.User, error) {
	user, err := s.storage.UserByActivationKey(key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	user.Activated = true
	user.ActivationKey = ""
	if err := s.storage.SaveUser(&user); err != nil {
		return nil, err
	}
	s.mirror(&user)

	logger.Log.Debug("activated user", "login", user.Login)
	return &user, nil
}

// RequestPasswordReset stamps a fresh reset key on the activated account
// with the given email. A prior unexpired key is simply overwritten.
// Unknown or unactivated accounts return (nil, nil) so the caller leaks
// nothing about account existence.
func (s *Users) RequestPasswordReset(email string) (*domain.User, error) {
	user, err := s.storage.UserByEmail(email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !user.Activated {
		return nil, nil
	}

	now := time.Now()
	user.ResetKey = s.keys.ResetKey()
	user.ResetDate = &now
	if err := s.storage.SaveUser(&user); err != nil {
		return nil, err
	}

	logger.Log.Debug("password reset requested", "login", user.Login)
	return &user, nil
}

// CompletePasswordReset installs the new password for the account holding
// the reset key and clears the key. A missing key and an expired key are
// indistinguishable to the caller: both return (nil, nil).
func (s *Users) CompletePasswordReset(newPassword, key string) (*domain.User, error) {
	user, err := s.storage.UserByResetKey(key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	// the window is measured against wall-clock time at completion
	if user.ResetDate == nil || time.Since(*user.ResetDate) > s.cfg.ResetKeyTTL {
		return nil, nil
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.ResetKey = ""
	user.ResetDate = nil
	if err := s.storage.SaveUser(&user); err != nil {
		return nil, err
	}

	logger.Log.Debug("password reset completed", "login", user.Login)
	return &user, nil
}

// Register creates a self-registered account: not activated, fresh
// activation key, ROLE_USER.
func (s *Users) Register(reg domain.Registration) (*domain.User, error) {
	if err := s.validate.Struct(reg); err != nil {
		return nil, errors.BadRequest("registration fields invalid")
	}
	if _, err := s.authorities.AuthorityByName(domain.RoleUser); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	langKey := reg.LangKey
	if langKey == "" {
		langKey = domain.DefaultLangKey
	}
	user := domain.User{
		Login:         reg.Login,
		PasswordHash:  hash,
		FirstName:     reg.FirstName,
		LastName:      reg.LastName,
		Email:         reg.Email,
		ImageUrl:      reg.ImageUrl,
		LangKey:       langKey,
		Activated:     false,
		ActivationKey: s.keys.ActivationKey(),
		CreatedDate:   time.Now(),
		Authorities:   []string{domain.RoleUser},
	}

	if err := s.storage.SaveUser(&user); err != nil {
		return nil, err
	}
	s.mirror(&user)

	logger.Log.Debug("registered user", "login", user.Login)
	return &user, nil
}

// Create is the administrative create: activated from the start, a random
// generated password, and a fresh reset key so the holder can set a first
// password through the reset flow. Unresolvable authority labels reject
// the whole create.
func (s *Users) Create(upd domain.UserUpdate) (*domain.User, error) {
	if err := s.validate.Struct(upd); err != nil {
		return nil, errors.BadRequest("user fields invalid")
	}
	authorities, err := s.resolveAuthorities(upd.Authorities)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(s.keys.Password())
	if err != nil {
		return nil, err
	}

	langKey := upd.LangKey
	if langKey == "" {
		langKey = domain.DefaultLangKey
	}
	now := time.Now()
	user := domain.User{
		Login:        upd.Login,
		PasswordHash: hash,
		FirstName:    upd.FirstName,
		LastName:     upd.LastName,
		Email:        upd.Email,
		ImageUrl:     upd.ImageUrl,
		LangKey:      langKey,
		Activated:    true,
		ResetKey:     s.keys.ResetKey(),
		ResetDate:    &now,
		CreatedDate:  now,
		Authorities:  authorities,
	}

	if err := s.storage.SaveUser(&user); err != nil {
		return nil, err
	}
	s.mirror(&user)

	logger.Log.Debug("created user", "login", user.Login)
	return &user, nil
}

// UpdateProfile mutates the listed profile fields on the acting user's
// own record. Self-service edits emit no notification.
func (s *Users) UpdateProfile(ctx context.Context, firstName, lastName, email, langKey, imageUrl string) error {
	login, err := s.identity.CurrentLogin(ctx)
	if err != nil {
		return err
	}
	user, err := s.storage.UserByLogin(login)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.Email = email
	user.LangKey = langKey
	user.ImageUrl = imageUrl
	if err := s.storage.SaveUser(&user); err != nil {
		return err
	}
	s.mirror(&user)

	logger.Log.Debug("updated profile", "login", user.Login)
	return nil
}

// Update is the administrative update. The target is asserted by id, so a
// miss is a caller error. The authority set is replaced wholesale, and the
// post-update state is published to the queue. A publish failure comes
// back as *errors.PublishError while the record mutation stays durable.
func (s *Users) Update(ctx context.Context, upd domain.UserUpdate) (*domain.User, error) {
	if err := s.validate.Struct(upd); err != nil {
		return nil, errors.BadRequest("user fields invalid")
	}
	user, err := s.storage.UserById(upd.Id)
	if err != nil {
		return nil, err
	}
	authorities, err := s.resolveAuthorities(upd.Authorities)
	if err != nil {
		return nil, err
	}

	user.Login = upd.Login
	user.FirstName = upd.FirstName
	user.LastName = upd.LastName
	user.Email = upd.Email
	user.ImageUrl = upd.ImageUrl
	user.Activated = upd.Activated
	user.LangKey = upd.LangKey
	user.Authorities = authorities

	if err := s.storage.SaveUser(&user); err != nil {
		return nil, err
	}
	s.mirror(&user)
	logger.Log.Debug("updated user", "login", user.Login)

	if err := s.publisher.PublishUserChanged(ctx, domain.UserChanged(&user)); err != nil {
		// the row is already committed; surface the lost notification
		return &user, err
	}
	return &user, nil
}

// Delete removes the account with the given login. Unknown logins are a
// no-op, so the operation is idempotent.
func (s *Users) Delete(login string) error {
	user, err := s.storage.UserByLogin(login)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}

	if err := s.social.DeleteConnections(user.Login); err != nil {
		return err
	}
	if err := s.storage.DeleteUser(&user); err != nil {
		return err
	}
	if err := s.index.Delete(&user); err != nil {
		logger.Log.Warn("search index delete failed",
			"login", user.Login,
			"error", err)
	}

	logger.Log.Debug("deleted user", "login", user.Login)
	return nil
}

// ChangePassword overwrites the acting user's password hash.
func (s *Users) ChangePassword(ctx context.Context, newPassword string) error {
	login, err := s.identity.CurrentLogin(ctx)
	if err != nil {
		return err
	}
	user, err := s.storage.UserByLogin(login)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.storage.SaveUser(&user); err != nil {
		return err
	}

	logger.Log.Debug("changed password", "login", user.Login)
	return nil
}

// AllManaged lists users page by page, always excluding the anonymous
// account.
func (s *Users) AllManaged(page int) ([]domain.User, error) {
	if page < 0 {
		page = 0
	}
	limit := s.cfg.PageSize
	return s.storage.UsersExcludingLogin(domain.AnonymousUser, limit, page*limit)
}

// WithAuthoritiesByLogin fetches one user with its authority set.
func (s *Users) WithAuthoritiesByLogin(login string) (*domain.User, error) {
	user, err := s.storage.UserByLogin(login)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// WithAuthoritiesById fetches one user with its authority set.
func (s *Users) WithAuthoritiesById(id int64) (*domain.User, error) {
	user, err := s.storage.UserById(id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentWithAuthorities fetches the acting user's own record.
func (s *Users) CurrentWithAuthorities(ctx context.Context) (*domain.User, error) {
	login, err := s.identity.CurrentLogin(ctx)
	if err != nil {
		return nil, err
	}
	return s.WithAuthoritiesByLogin(login)
}

// resolveAuthorities maps labels to persisted authority records. Any
// unknown label rejects the whole set.
func (s *Users) resolveAuthorities(labels []string) ([]string, error) {
	resolved := make([]string, 0, len(labels))
	for _, label := range labels {
		authority, err := s.authorities.AuthorityByName(label)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, authority.Name)
	}
	return resolved, nil
}
