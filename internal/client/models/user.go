// Package models defines the client-side data model: the authenticated user,
// the denormalized profile projection, both session record types, and the
// transient two-factor enrollment state.
package models

// User is the backend-owned identity attached to a primary session.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`

	TwoFactorEnabled bool `json:"two_factor_enabled,omitempty"`
}

// Profile is a denormalized, UI-friendly projection of backend user fields.
// It is always a cache: authoritative reads re-fetch from the backend and
// overwrite it wholesale.
type Profile struct {
	Bio              string            `json:"bio,omitempty"`
	Location         string            `json:"location,omitempty"`
	JobTitle         string            `json:"job_title,omitempty"`
	Socials          map[string]string `json:"socials,omitempty"`
	TwoFactorEnabled bool              `json:"two_factor_enabled"`
}
