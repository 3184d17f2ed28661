// Package session holds the per-browser credential and tenant pair that the
// request layer attaches to every backend call.
package session

import (
	"context"

	"github.com/cockroachdb/errors"
)

var ErrNotFound = errors.New("session not found")

// Session is created at login and read by every subsequent request. It is
// passed explicitly to the request layer rather than read from global state.
type Session struct {
	ID       string `json:"id"`
	Token    string `json:"-"`
	TenantID string `json:"tenant_id"`
	Language string `json:"language,omitempty"`
}

// Anonymous returns a session that scopes requests to a tenant without credentials.
func Anonymous(tenantID string) Session {
	return Session{TenantID: tenantID}
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Store persists sessions between requests.
type Store interface {
	Create(ctx context.Context, s Session) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	SetLanguage(ctx context.Context, id, language string) error
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by the HTTP layer. The second
// return value is false when the request carries no session at all.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
