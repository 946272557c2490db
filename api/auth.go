package api

import "github.com/kolah/relay/httperr"

type authKind int

const (
	authRequired authKind = iota
	authOptional
	authNone
	authPredicate
)

// AuthPolicy states who may call a route. The zero value requires
// credentials.
type AuthPolicy struct {
	kind  authKind
	allow func(credentials any) bool
}

var (
	AuthRequired = AuthPolicy{kind: authRequired}
	AuthOptional = AuthPolicy{kind: authOptional}
	AuthNone     = AuthPolicy{kind: authNone}
)

// AuthFunc requires credentials accepted by allow.
func AuthFunc(allow func(credentials any) bool) AuthPolicy {
	return AuthPolicy{kind: authPredicate, allow: allow}
}

// IsNone reports whether the route skips authentication entirely.
func (p AuthPolicy) IsNone() bool {
	return p.kind == authNone
}

func (p AuthPolicy) String() string {
	switch p.kind {
	case authOptional:
		return "optional"
	case authNone:
		return "none"
	case authPredicate:
		return "predicate"
	default:
		return "required"
	}
}

// Authorize checks credentials against the policy: 401 when credentials are
// needed but absent, 403 when a predicate rejects them.
func (p AuthPolicy) Authorize(credentials any) error {
	switch p.kind {
	case authOptional, authNone:
		return nil
	case authPredicate:
		if credentials == nil {
			return httperr.Unauthorized("")
		}
		if p.allow == nil || !p.allow(credentials) {
			return httperr.Forbidden("")
		}
		return nil
	default:
		if credentials == nil {
			return httperr.Unauthorized("")
		}
		return nil
	}
}
