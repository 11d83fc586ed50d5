package httpapi

import (
	"context"
	"net/http"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/platform/httpx"
	"github.com/louisbranch/taskboard/internal/platform/logging"
	"github.com/louisbranch/taskboard/internal/platform/requestctx"
	"github.com/louisbranch/taskboard/internal/services/todo/session"
)

var (
	errNoToken      = apperrors.New(apperrors.CodeUnauthorized, "Unauthorized")
	errRevokedToken = apperrors.New(apperrors.CodeInvalidToken, "Invalid or expired token")
)

// SessionVerifier validates session tokens.
type SessionVerifier interface {
	Verify(value string) (session.Claims, error)
}

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Guard rejects requests without a valid, unrevoked session with 401 and
// attaches the session to the request context otherwise. It never writes
// stored state.
func Guard(verifier SessionVerifier, revocations RevocationChecker) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			current, err := authenticate(r, verifier, revocations)
			if err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			ctx := requestctx.WithSession(r.Context(), current)
			logging.FromContext(ctx).Debug("session accepted")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate resolves the caller's session from the request.
func authenticate(r *http.Request, verifier SessionVerifier, revocations RevocationChecker) (requestctx.Session, error) {
	value, ok := readSessionToken(r)
	if !ok {
		return requestctx.Session{}, errNoToken
	}
	claims, err := verifier.Verify(value)
	if err != nil {
		return requestctx.Session{}, err
	}
	if revocations != nil {
		revoked, err := revocations.IsRevoked(r.Context(), claims.TokenID)
		if err != nil {
			return requestctx.Session{}, err
		}
		if revoked {
			return requestctx.Session{}, errRevokedToken
		}
	}
	return requestctx.Session{
		UserID:    claims.UserID,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
