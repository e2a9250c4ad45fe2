package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lucaria/internal/events"
	"github.com/Skotchmaster/lucaria/internal/models"
	"github.com/Skotchmaster/lucaria/internal/repo"
	"github.com/Skotchmaster/lucaria/pkg/hash"
	"github.com/Skotchmaster/lucaria/pkg/logging"
	"github.com/Skotchmaster/lucaria/pkg/tokens"
)

const (
	MsgEnterUsername    = "Enter a username."
	MsgUsernameTooShort = "Username must be at least 3 characters"
	MsgUsernameTooLong  = "Username cannot exceed 10 characters"
	MsgUsernameCharset  = "Username can only contain letters and numbers"
	MsgUsernameTaken    = "Username is taken."
	MsgEnterPassword    = "Enter a password."
	MsgPasswordTooShort = "Password must be at least 12 characters"
	MsgPasswordTooLong  = "Password cannot exceed 70 characters"
	MsgInvalidLogin     = "Invalid username / password."

	usernameMin = 3
	usernameMax = 10
	passwordMin = 12
	passwordMax = 70
	// bcrypt ignores input past 72 bytes
	passwordMaxBytes = 72
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	Admins    []string
	Events    events.Publisher
	Now       func() time.Time
}

type AuthResult struct {
	Token    string
	Expires  time.Time
	UserID   uint
	Username string
	Role     string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) roleFor(username string) string {
	for _, a := range s.Admins {
		if a == username {
			return models.RoleAdmin
		}
	}
	return models.RoleUser
}

// Register validates the form, stores the user with a bcrypt hash and returns
// a signed token. Every failing rule is reported, not only the first.
func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")
	username = strings.TrimSpace(username)

	verr := &ValidationError{}
	if username == "" {
		verr.add(MsgEnterUsername)
	} else {
		n := utf8.RuneCountInString(username)
		if n < usernameMin {
			verr.add(MsgUsernameTooShort)
		}
		if n > usernameMax {
			verr.add(MsgUsernameTooLong)
		}
		if !usernamePattern.MatchString(username) {
			verr.add(MsgUsernameCharset)
		}
	}

	taken, err := s.Repo.UsernameTaken(ctx, username)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot check username", "error", err)
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		verr.add(MsgUsernameTaken)
	}

	if password == "" {
		verr.add(MsgEnterPassword)
	} else {
		n := utf8.RuneCountInString(password)
		if n < passwordMin {
			verr.add(MsgPasswordTooShort)
		}
		if n > passwordMax || len(password) > passwordMaxBytes {
			verr.add(MsgPasswordTooLong)
		}
	}

	if err := verr.orNil(); err != nil {
		l.Warn("register_rejected", "status", 200, "reasons", verr.Messages)
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         s.roleFor(username),
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_rejected", "status", 200, "reason", "username taken on insert")
			return nil, &ValidationError{Messages: []string{MsgUsernameTaken}}
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	res, err := s.issue(&user)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.Event{
		Topic:   events.TopicUser,
		Key:     strconv.FormatUint(uint64(user.ID), 10),
		Type:    "user_registered",
		Payload: map[string]any{"user_id": user.ID, "username": user.Username},
	})
	l.Info("register_successful", "user_id", user.ID)
	return res, nil
}

// Login checks credentials. Every failure is ErrInvalidCredentials so callers
// cannot tell an unknown user from a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")
	username = strings.TrimSpace(username)

	if username == "" {
		l.Warn("login_failed", "status", 200, "reason", "empty username")
		return nil, ErrInvalidCredentials
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 200, "reason", "invalid username or password")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, fmt.Errorf("load user: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 200, "reason", "invalid username or password")
		return nil, ErrInvalidCredentials
	}

	res, err := s.issue(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.Event{
		Topic:   events.TopicUser,
		Key:     strconv.FormatUint(uint64(user.ID), 10),
		Type:    "user_logged_in",
		Payload: map[string]any{"user_id": user.ID},
	})
	l.Info("login_successful", "user_id", user.ID)
	return res, nil
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	tok, exp, err := tokens.IssueAuthToken(s.JWTSecret, u.ID, u.Username, u.Role, s.now())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{
		Token:    tok,
		Expires:  exp,
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	}, nil
}
