package security

import (
	"context"

	"github.com/trifonnt/accountd/internal/errors"
)

type contextKey string

const loginKey contextKey = "login"

// WithLogin stamps the acting user's login onto the context. The caller
// (API layer, tests, tooling) is responsible for authentication.
func WithLogin(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, loginKey, login)
}

// ContextResolver resolves the acting login from the request context.
type ContextResolver struct{}

func NewContextResolver() *ContextResolver {
	return &ContextResolver{}
}

func (r *ContextResolver) CurrentLogin(ctx context.Context) (string, error) {
	login, ok := ctx.Value(loginKey).(string)
	if !ok || login == "" {
		return "", errors.NotFound("no authenticated login in context")
	}
	return login, nil
}
