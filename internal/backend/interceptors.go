package backend

import (
	"net/http"

	"github.com/robertarktes/airline-booking-bff/internal/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	HeaderTenant        = "X-Tenant-ID"
	HeaderAuthorization = "Authorization"
)

// Interceptor edits an outbound request before it is sent.
type Interceptor func(req *http.Request, sess session.Session)

// SessionHeaders scopes the request to the session's tenant and, when the
// session holds a credential, authorizes it with a bearer token.
func SessionHeaders(req *http.Request, sess session.Session) {
	req.Header.Set(HeaderTenant, sess.TenantID)
	if sess.Authenticated() {
		req.Header.Set(HeaderAuthorization, "Bearer "+sess.Token)
	}
}

// TraceContext propagates the active span to the backend.
func TraceContext(req *http.Request, _ session.Session) {
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
}

// AcceptLanguage forwards the session's language preference.
func AcceptLanguage(req *http.Request, sess session.Session) {
	if sess.Language != "" {
		req.Header.Set("Accept-Language", sess.Language)
	}
}
