// Package tenant derives the airline tenant of a request from its origin host.
package tenant

import (
	"context"
	"net"
	"strings"
)

// DefaultID is returned for hosts that carry no tenant subdomain.
const DefaultID = "default"

// Resolve returns the first label of host when host has at least three
// dot-separated labels, and DefaultID otherwise. A trailing port is ignored.
func Resolve(host string) string {
	return ResolveWithDefault(host, DefaultID)
}

// ResolveWithDefault is Resolve with a caller-chosen fallback.
func ResolveWithDefault(host, fallback string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	labels := strings.Split(host, ".")
	if len(labels) >= 3 && labels[0] != "" {
		return labels[0]
	}
	return fallback
}

type ctxKey struct{}

func WithTenant(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return DefaultID
}
