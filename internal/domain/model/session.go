package model

import "time"

type SessionKind string

const (
	// SessionPrimary is the user's own login session.
	SessionPrimary SessionKind = "primary"
	// SessionSecondary is an impersonated session opened by support staff.
	// When present it takes precedence over the primary session.
	SessionSecondary SessionKind = "secondary"
)

// AuthSession holds one persisted bearer credential plus the identity it
// was issued for. ExpiresAt may be zero when the token carries no expiry.
type AuthSession struct {
	Kind      SessionKind
	Token     string
	UserName  string
	SellerID  string
	ExpiresAt time.Time
}

func (s *AuthSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
