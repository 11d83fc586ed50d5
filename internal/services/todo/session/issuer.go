// Package session mints and verifies signed session tokens.
package session

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/platform/id"
)

const (
	// DefaultTTL bounds a session when no TTL is configured.
	DefaultTTL = 24 * time.Hour
	// DefaultIssuer is the iss claim stamped on tokens.
	DefaultIssuer = "taskboard"
)

var (
	// ErrSecretRequired indicates an issuer built without a signing secret.
	ErrSecretRequired = stderrors.New("session secret is required")
	// ErrUserRequired indicates a token request without a user id.
	ErrUserRequired = apperrors.New(apperrors.CodeUnauthorized, "Unauthorized")
	// ErrInvalidToken indicates a token that fails signature or claim checks.
	ErrInvalidToken = apperrors.New(apperrors.CodeInvalidToken, "Invalid or expired token")
	// ErrExpiredToken indicates a well-formed token past its expiry.
	ErrExpiredToken = apperrors.New(apperrors.CodeExpiredToken, "Invalid or expired token")
)

// Config configures an Issuer. Secret is required.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	Now    func() time.Time
	// IDGenerator mints token ids; defaults to id.NewID.
	IDGenerator func() (string, error)
}

// Token is a freshly signed session token.
type Token struct {
	Value     string
	ID        string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims are the verified contents of a token.
type Claims struct {
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 session tokens with an injected secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	newID  func() (string, error)
}

// NewIssuer builds an Issuer from cfg.
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretRequired
	}
	issuer := &Issuer{
		secret: append([]byte(nil), cfg.Secret...),
		ttl:    cfg.TTL,
		issuer: strings.TrimSpace(cfg.Issuer),
		now:    cfg.Now,
		newID:  cfg.IDGenerator,
	}
	if issuer.ttl <= 0 {
		issuer.ttl = DefaultTTL
	}
	if issuer.issuer == "" {
		issuer.issuer = DefaultIssuer
	}
	if issuer.now == nil {
		issuer.now = time.Now
	}
	if issuer.newID == nil {
		issuer.newID = id.NewID
	}
	return issuer, nil
}

// Issue signs a new token for userID.
func (i *Issuer) Issue(userID string) (Token, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Token{}, ErrUserRequired
	}
	tokenID, err := i.newID()
	if err != nil {
		return Token{}, fmt.Errorf("generate token id: %w", err)
	}

	// JWT NumericDate has second precision.
	issuedAt := i.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		ID:        tokenID,
		Subject:   userID,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign session token: %w", err)
	}
	return Token{
		Value:     signed,
		ID:        tokenID,
		UserID:    userID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the claims.
func (i *Issuer) Verify(value string) (Claims, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Claims{}, ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}
	if strings.TrimSpace(claims.Subject) == "" || strings.TrimSpace(claims.ID) == "" {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return out, nil
}

func mapJWTError(err error) error {
	switch {
	case stderrors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(apperrors.CodeExpiredToken, ErrExpiredToken.Message, err)
	default:
		return apperrors.Wrap(apperrors.CodeInvalidToken, ErrInvalidToken.Message, err)
	}
}
