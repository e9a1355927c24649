package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
)

// firebaseJWKSURL serves the public keys Firebase signs ID tokens with, in
// JWK set form.
const firebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// AuthUseCaseInterface verifies a bearer token and resolves it to a user.
type AuthUseCaseInterface interface {
	VerifyToken(ctx context.Context, idToken string) (*model.User, error)
	IsNoAuthn() bool
}

// AuthUseCase verifies Firebase ID tokens against Google's published JWK set.
// Verified claims upsert the user record, so the user store follows the
// identity provider.
type AuthUseCase struct {
	repo      interfaces.Repository
	projectID string
	jwkCache  *jwk.Cache
}

func NewAuthUseCase(ctx context.Context, repo interfaces.Repository, projectID string) (*AuthUseCase, error) {
	if projectID == "" {
		return nil, goerr.New("firebase project ID is required")
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(firebaseJWKSURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, goerr.Wrap(err, "failed to register Firebase JWKS")
	}

	return &AuthUseCase{
		repo:      repo,
		projectID: projectID,
		jwkCache:  cache,
	}, nil
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// VerifyToken parses and verifies a Firebase ID token, then upserts and
// returns the user it identifies.
func (uc *AuthUseCase) VerifyToken(ctx context.Context, idToken string) (*model.User, error) {
	keySet, err := uc.jwkCache.Get(ctx, firebaseJWKSURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch Firebase public keys")
	}

	// Allow 10 seconds of clock skew to handle time synchronization differences
	token, err := jwt.Parse([]byte(idToken),
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithIssuer("https://securetoken.google.com/"+uc.projectID),
		jwt.WithAudience(uc.projectID),
		jwt.WithAcceptableSkew(10*time.Second),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse or verify ID token")
	}

	sub := token.Subject()
	if sub == "" {
		return nil, goerr.New("sub claim not found in token")
	}

	user := &model.User{ID: types.UserID(sub)}
	if email, ok := token.Get("email"); ok {
		if s, ok := email.(string); ok {
			user.Email = s
		}
	}
	if name, ok := token.Get("name"); ok {
		if s, ok := name.(string); ok {
			user.FirstName, user.LastName = splitName(s)
		}
	}
	if picture, ok := token.Get("picture"); ok {
		if s, ok := picture.(string); ok {
			user.ProfileImageURL = s
		}
	}

	upserted, err := uc.repo.User().Upsert(ctx, user)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert verified user",
			goerr.V("userID", user.ID),
		)
	}

	return upserted, nil
}

func splitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// GetMe returns the stored user record for an already-verified user ID.
func (uc *UseCases) GetMe(ctx context.Context, userID types.UserID) (*model.User, error) {
	user, err := uc.repo.User().Get(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("userID", userID))
	}
	return user, nil
}
