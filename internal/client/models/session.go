package models

import "time"

// SessionRecord is the token+user pair proving an authenticated identity to
// the backend. Token and User exist together or not at all.
type SessionRecord struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
	Mode  string `json:"mode"`
}

// DashboardUser is the identity embedded in a dashboard session. Its role is
// always "admin"; the record never carries a backend token.
type DashboardUser struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// DashboardSession gates the admin dashboard route. Its validity is defined
// purely locally: the embedded Token must equal the mirrored shadow slot.
type DashboardSession struct {
	User      DashboardUser `json:"user"`
	LoginTime time.Time     `json:"login_time"`
	Token     string        `json:"token"`
}
