// Package user holds the account model and its validation rules.
package user

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/platform/id"
)

const (
	minNameLength     = 2
	maxNameLength     = 50
	minPasswordLength = 6
	// bcrypt only looks at the first 72 bytes.
	maxPasswordBytes = 72
)

var (
	// ErrNameTooShort indicates a name shorter than two characters after trimming.
	ErrNameTooShort = apperrors.New(apperrors.CodeValidation, "Name must be at least 2 characters")
	// ErrNameTooLong indicates a name longer than fifty characters.
	ErrNameTooLong = apperrors.New(apperrors.CodeValidation, "Name too long")
	// ErrInvalidEmail indicates an address that is not a bare addr-spec.
	ErrInvalidEmail = apperrors.New(apperrors.CodeValidation, "Invalid email format")
	// ErrPasswordTooShort indicates a sign-up password under six characters.
	ErrPasswordTooShort = apperrors.New(apperrors.CodeValidation, "Password must be at least 6 characters")
	// ErrPasswordTooLong indicates a password past the 72 bytes bcrypt reads.
	ErrPasswordTooLong = apperrors.New(apperrors.CodeValidation, "Password too long")
	// ErrPasswordRequired indicates an empty login password.
	ErrPasswordRequired = apperrors.New(apperrors.CodeValidation, "Password is required")
	// ErrEmptyProfilePatch indicates a profile update with no fields set.
	ErrEmptyProfilePatch = apperrors.New(apperrors.CodeInvalidInput, "At least one field (name or email) must be provided")
)

// User is an account as exposed outside the credential store. It never
// carries the password hash.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput describes the profile fields collected at sign-up.
type CreateUserInput struct {
	Name  string
	Email string
}

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	Name  *string
	Email *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil
}

// CreateUser validates input and mints a new user identity.
func CreateUser(input CreateUserInput, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	name, err := NormalizeName(input.Name)
	if err != nil {
		return User{}, err
	}
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return User{}, err
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	// Stored timestamps keep millisecond precision.
	createdAt := now().UTC().Truncate(time.Millisecond)
	return User{
		ID:        userID,
		Name:      name,
		Email:     email,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NormalizeName trims and NFC-normalizes a display name and enforces its
// length in characters.
func NormalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	length := utf8.RuneCountInString(name)
	if length < minNameLength {
		return "", ErrNameTooShort
	}
	if length > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// NormalizeEmail trims and lowercases an address and checks it is a bare
// addr-spec. Lowercasing makes uniqueness case-insensitive.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return "", ErrInvalidEmail
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 || !strings.Contains(email[at+1:], ".") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ValidatePassword enforces the sign-up password policy.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateLoginPassword only requires a password to be present; policy is
// enforced at sign-up.
func ValidateLoginPassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// NormalizeProfilePatch validates every supplied field, then requires at
// least one field to be present.
func NormalizeProfilePatch(patch ProfilePatch) (ProfilePatch, error) {
	var out ProfilePatch
	if patch.Name != nil {
		name, err := NormalizeName(*patch.Name)
		if err != nil {
			return ProfilePatch{}, err
		}
		out.Name = &name
	}
	if patch.Email != nil {
		email, err := NormalizeEmail(*patch.Email)
		if err != nil {
			return ProfilePatch{}, err
		}
		out.Email = &email
	}
	if out.IsEmpty() {
		return ProfilePatch{}, ErrEmptyProfilePatch
	}
	return out, nil
}

// Apply returns u with the patch applied.
func (u User) Apply(patch ProfilePatch, updatedAt time.Time) User {
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	u.UpdatedAt = updatedAt.UTC()
	return u
}
