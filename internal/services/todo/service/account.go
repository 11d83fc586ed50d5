package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/taskboard/internal/platform/logging"
	platformotel "github.com/louisbranch/taskboard/internal/platform/otel"
	"github.com/louisbranch/taskboard/internal/platform/requestctx"
	"github.com/louisbranch/taskboard/internal/services/todo/session"
	"github.com/louisbranch/taskboard/internal/services/todo/storage"
	"github.com/louisbranch/taskboard/internal/services/todo/user"
)

const tracerName = "taskboard/service"

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(userID string) (session.Token, error)
}

// SignUpInput is the sign-up payload.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// AccountDeps wires AccountService collaborators.
type AccountDeps struct {
	Users       storage.UserStore
	Revocations storage.SessionRevocationStore
	Issuer      TokenIssuer
	Hasher      PasswordHasher
	Clock       func() time.Time
	IDGenerator func() (string, error)
}

// AccountService handles sign-up, login, logout and profile management.
type AccountService struct {
	users       storage.UserStore
	revocations storage.SessionRevocationStore
	issuer      TokenIssuer
	hasher      PasswordHasher
	clock       func() time.Time
	idGenerator func() (string, error)
	tracer      trace.Tracer
}

// NewAccountService validates deps and builds the service.
func NewAccountService(deps AccountDeps) (*AccountService, error) {
	if deps.Users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if deps.Revocations == nil {
		return nil, fmt.Errorf("session revocation store is required")
	}
	if deps.Issuer == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	if deps.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AccountService{
		users:       deps.Users,
		revocations: deps.Revocations,
		issuer:      deps.Issuer,
		hasher:      deps.Hasher,
		clock:       clock,
		idGenerator: deps.IDGenerator,
		tracer:      platformotel.Tracer(tracerName),
	}, nil
}

// SignUp creates an account. Validation runs name, email, then password.
func (s *AccountService) SignUp(ctx context.Context, input SignUpInput) (user.User, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.SignUp")
	defer span.End()

	created, err := user.CreateUser(user.CreateUserInput{Name: input.Name, Email: input.Email}, s.clock, s.idGenerator)
	if err != nil {
		return user.User{}, err
	}
	if err := user.ValidatePassword(input.Password); err != nil {
		return user.User{}, err
	}

	if _, err := s.users.GetUserByEmail(ctx, created.Email); err == nil {
		return user.User{}, ErrEmailRegistered
	} else if !stderrors.Is(err, storage.ErrNotFound) {
		return user.User{}, internal("lookup email", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return user.User{}, internal("sign up", err)
	}
	if err := s.users.CreateUser(ctx, storage.UserRecord{User: created, PasswordHash: hash}); err != nil {
		// A concurrent sign-up can still win the UNIQUE constraint.
		if stderrors.Is(err, storage.ErrDuplicateEmail) {
			return user.User{}, ErrEmailRegistered
		}
		return user.User{}, internal("create user", err)
	}

	span.SetAttributes(attribute.String("user.id", created.ID))
	logging.FromContext(ctx).WithField("user_id", created.ID).Info("user signed up")
	return created, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords fail identically.
func (s *AccountService) Login(ctx context.Context, email, password string) (session.Token, user.User, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Login")
	defer span.End()

	normalized, err := user.NormalizeEmail(email)
	if err != nil {
		return session.Token{}, user.User{}, err
	}
	if err := user.ValidateLoginPassword(password); err != nil {
		return session.Token{}, user.User{}, err
	}

	record, err := s.users.GetUserByEmail(ctx, normalized)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			s.hasher.Compare("", password)
			return session.Token{}, user.User{}, ErrInvalidCredentials
		}
		return session.Token{}, user.User{}, internal("lookup user", err)
	}
	if !s.hasher.Compare(record.PasswordHash, password) {
		return session.Token{}, user.User{}, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(record.ID)
	if err != nil {
		return session.Token{}, user.User{}, internal("issue session", err)
	}
	span.SetAttributes(attribute.String("user.id", record.ID))
	logging.FromContext(ctx).WithField("user_id", record.ID).Info("user logged in")
	return token, record.User, nil
}

// Logout revokes the session's token until it would have expired anyway.
func (s *AccountService) Logout(ctx context.Context, current requestctx.Session) error {
	ctx, span := s.tracer.Start(ctx, "AccountService.Logout")
	defer span.End()

	if current.TokenID == "" {
		return nil
	}
	if !current.ExpiresAt.After(s.clock()) {
		return nil
	}
	if err := s.revocations.RevokeSession(ctx, current.TokenID, current.ExpiresAt); err != nil {
		return internal("revoke session", err)
	}
	return nil
}

// IsRevoked reports whether a token id was logged out.
func (s *AccountService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	revoked, err := s.revocations.IsSessionRevoked(ctx, tokenID)
	if err != nil {
		return false, internal("check revocation", err)
	}
	return revoked, nil
}

// PruneRevocations drops revocations for tokens that have expired.
func (s *AccountService) PruneRevocations(ctx context.Context) (int64, error) {
	deleted, err := s.revocations.DeleteExpiredRevocations(ctx, s.clock())
	if err != nil {
		return 0, internal("prune revocations", err)
	}
	return deleted, nil
}

// Profile returns the account for userID.
func (s *AccountService) Profile(ctx context.Context, userID string) (user.User, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Profile")
	defer span.End()

	if userID == "" {
		return user.User{}, ErrUnauthenticated
	}
	record, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return user.User{}, translateNotFound(err, ErrUserNotFound, "get user")
	}
	return record.User, nil
}

// UpdateProfile applies a partial profile update. A new email must not
// belong to any other account.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, patch user.ProfilePatch) (user.User, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.UpdateProfile")
	defer span.End()

	if userID == "" {
		return user.User{}, ErrUnauthenticated
	}
	normalized, err := user.NormalizeProfilePatch(patch)
	if err != nil {
		return user.User{}, err
	}

	record, err := s.users.UpdateUser(ctx, userID, normalized, s.clock())
	if err != nil {
		if stderrors.Is(err, storage.ErrDuplicateEmail) {
			return user.User{}, ErrEmailInUse
		}
		return user.User{}, translateNotFound(err, ErrUserNotFound, "update user")
	}
	return record.User, nil
}
