package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rentivu/internal/domain/entity"
	repo "github.com/oksasatya/rentivu/internal/domain/repository"
	"github.com/oksasatya/rentivu/internal/infrastructure/kv"
	"github.com/oksasatya/rentivu/pkg/helpers"
)

// CreatedAtLayout is the ISO-8601 UTC layout used for User.CreatedAt.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

const (
	usersSuffix = "users"
	authSuffix  = "auth"
)

type seedAccount struct {
	FullName string
	Email    string
	Password string
}

// demoAccounts are written on first Bootstrap when the roster is empty.
var demoAccounts = []seedAccount{
	{FullName: "Petar Petrović", Email: "petar@example.com", Password: "petar123"},
	{FullName: "Mina Marin", Email: "mina@example.com", Password: "mina123"},
	{FullName: "Jovana Jović", Email: "jovana@example.com", Password: "jovana"},
	{FullName: "Marko Marković", Email: "marko@example.com", Password: "marko"},
}

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Phone    string
}

// AuthService owns the user roster and the single session record.
// Every mutation is one Storage.Atomic call over both keys.
type AuthService struct {
	Store  repo.Storage
	Keys   kv.Namespace
	Hasher helpers.PasswordHasher
	Logger *logrus.Logger
	Events EventPublisher
	NewID  func() string
	Now    func() time.Time
}

func NewAuthService(store repo.Storage, prefix string, hasher helpers.PasswordHasher, logger *logrus.Logger) *AuthService {
	if hasher == nil {
		hasher = helpers.WeakHasher{}
	}
	return &AuthService{
		Store:  store,
		Keys:   kv.Namespace(prefix),
		Hasher: hasher,
		Logger: logger,
		NewID:  uuid.NewString,
		Now:    time.Now,
	}
}

func (s *AuthService) UsersKey() string { return s.Keys.Key(usersSuffix) }
func (s *AuthService) AuthKey() string  { return s.Keys.Key(authSuffix) }

// Bootstrap seeds the demo roster when it is empty, then rewrites the session
// record so its roster mirrors storage while keeping the current user.
func (s *AuthService) Bootstrap(ctx context.Context) (entity.AuthState, error) {
	var state entity.AuthState
	err := s.Store.Atomic(ctx, s.keys(), func(tx repo.KV) error {
		users, err := s.loadUsers(ctx, tx)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			for _, a := range demoAccounts {
				u, err := s.newUser(RegisterInput{FullName: a.FullName, Email: a.Email, Password: a.Password})
				if err != nil {
					return err
				}
				users = append(users, u)
			}
			if err := kv.Save(ctx, tx, s.UsersKey(), users); err != nil {
				return err
			}
		}
		state, err = s.loadState(ctx, tx, users)
		if err != nil {
			return err
		}
		state.Users = users
		return kv.Save(ctx, tx, s.AuthKey(), state)
	})
	if err != nil {
		return entity.AuthState{}, err
	}
	s.log().WithField("users", len(state.Users)).Debug("auth bootstrapped")
	return state, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (entity.AuthState, error) {
	var state entity.AuthState
	err := s.Store.Atomic(ctx, s.keys(), func(tx repo.KV) error {
		users, err := s.loadUsers(ctx, tx)
		if err != nil {
			return err
		}
		found, ok := findByEmail(users, email)
		if !ok {
			return ErrUserNotFound
		}
		if !s.Hasher.Verify(found.PasswordHash, password) {
			return ErrInvalidCredentials
		}
		state = entity.AuthState{CurrentUser: &found, Users: users}
		return kv.Save(ctx, tx, s.AuthKey(), state)
	})
	if err != nil {
		return entity.AuthState{}, err
	}
	s.log().WithField("user_id", state.CurrentUser.ID).Info("user logged in")
	return state, nil
}

func (s *AuthService) Logout(ctx context.Context) (entity.AuthState, error) {
	var state entity.AuthState
	err := s.Store.Atomic(ctx, s.keys(), func(tx repo.KV) error {
		users, err := s.loadUsers(ctx, tx)
		if err != nil {
			return err
		}
		state = entity.AuthState{Users: users}
		return kv.Save(ctx, tx, s.AuthKey(), state)
	})
	if err != nil {
		return entity.AuthState{}, err
	}
	return state, nil
}

// Register appends a new user and makes it the session user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (entity.AuthState, error) {
	var state entity.AuthState
	err := s.Store.Atomic(ctx, s.keys(), func(tx repo.KV) error {
		users, err := s.loadUsers(ctx, tx)
		if err != nil {
			return err
		}
		if _, exists := findByEmail(users, in.Email); exists {
			return ErrEmailAlreadyRegistered
		}
		u, err := s.newUser(in)
		if err != nil {
			return err
		}
		next := make([]entity.User, 0, len(users)+1)
		next = append(next, users...)
		next = append(next, u)
		if err := kv.Save(ctx, tx, s.UsersKey(), next); err != nil {
			return err
		}
		state = entity.AuthState{CurrentUser: &u, Users: next}
		return kv.Save(ctx, tx, s.AuthKey(), state)
	})
	if err != nil {
		return entity.AuthState{}, err
	}

	u := state.CurrentUser
	s.log().WithField("user_id", u.ID).Info("user registered")
	publishEvent(ctx, s.Events, s.Logger, EventUserRegistered, map[string]string{
		"id":       u.ID,
		"email":    u.Email,
		"fullName": u.FullName,
	})
	return state, nil
}

// Users returns the roster, empty when missing or unreadable.
func (s *AuthService) Users(ctx context.Context) []entity.User {
	users, err := s.loadUsers(ctx, s.Store)
	if err != nil {
		helpers.LogWarn(s.Logger, "user roster unreadable, using empty roster", err, logrus.Fields{"key": s.UsersKey()})
		return []entity.User{}
	}
	return users
}

// State returns the stored session record, defaulting to anonymous with the current roster.
func (s *AuthService) State(ctx context.Context) entity.AuthState {
	state, err := s.loadState(ctx, s.Store, nil)
	if err != nil {
		helpers.LogWarn(s.Logger, "auth state unreadable, using anonymous session", err, logrus.Fields{"key": s.AuthKey()})
		return entity.AuthState{Users: s.Users(ctx)}
	}
	return state
}

func (s *AuthService) keys() []string {
	return []string{s.UsersKey(), s.AuthKey()}
}

// loadUsers reads the roster. A corrupt roster reads as empty; a failed read
// is returned so a mutation never rewrites the roster from nothing.
func (s *AuthService) loadUsers(ctx context.Context, store repo.KV) ([]entity.User, error) {
	users, err := kv.Load(ctx, store, s.UsersKey(), []entity.User{})
	if err != nil {
		if !errors.Is(err, kv.ErrCorrupt) {
			return nil, err
		}
		helpers.LogWarn(s.Logger, "user roster corrupt, using empty roster", err, logrus.Fields{"key": s.UsersKey()})
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

// loadState reads the session record. A missing or corrupt record, or one
// without a roster, takes its users from the fallback, loaded lazily when nil.
func (s *AuthService) loadState(ctx context.Context, store repo.KV, users []entity.User) (entity.AuthState, error) {
	state, err := kv.Load(ctx, store, s.AuthKey(), entity.AuthState{})
	if err != nil {
		if !errors.Is(err, kv.ErrCorrupt) {
			return entity.AuthState{}, err
		}
		helpers.LogWarn(s.Logger, "auth state corrupt, using anonymous session", err, logrus.Fields{"key": s.AuthKey()})
	}
	if state.Users == nil {
		if users == nil {
			if users, err = s.loadUsers(ctx, store); err != nil {
				return entity.AuthState{}, err
			}
		}
		state.Users = users
	}
	return state, nil
}

func (s *AuthService) newUser(in RegisterInput) (entity.User, error) {
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return entity.User{}, err
	}
	return entity.User{
		ID:           s.NewID(),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        normalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		CreatedAt:    s.Now().UTC().Format(CreatedAtLayout),
	}, nil
}

func (s *AuthService) log() *logrus.Logger {
	if s.Logger == nil {
		return helpers.NopLogger()
	}
	return s.Logger
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func findByEmail(users []entity.User, email string) (entity.User, bool) {
	want := normalizeEmail(email)
	for _, u := range users {
		if strings.ToLower(u.Email) == want {
			return u, true
		}
	}
	return entity.User{}, false
}
