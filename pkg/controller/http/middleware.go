package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/usecase"
)

type ctxUserKey struct{}

func contextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, user)
}

func userFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(ctxUserKey{}).(*model.User)
	return user
}

// authMiddleware resolves the request's user from the bearer token and puts
// it into the context. No-auth mode still goes through VerifyToken so the
// fixed development user exists in the repository.
func authMiddleware(authUC usecase.AuthUseCaseInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authUC == nil {
				http.Error(w, "authentication is not configured", http.StatusUnauthorized)
				return
			}

			var token string
			if header := r.Header.Get("Authorization"); header != "" {
				token = strings.TrimPrefix(header, "Bearer ")
			}
			if token == "" && !authUC.IsNoAuthn() {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}

			user, err := authUC.VerifyToken(r.Context(), token)
			if err != nil {
				http.Error(w, "invalid authentication token", http.StatusUnauthorized)
				return
			}

			ctx := contextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
