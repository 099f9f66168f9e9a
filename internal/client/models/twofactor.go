package models

import "time"

// TwoFactorEnrollment is the transient state issued by the backend when
// enrollment starts. It lives in memory only: it is discarded on successful
// verification, on cancel, or replaced wholesale when the enrollment deadline
// passes and a fresh secret is issued.
type TwoFactorEnrollment struct {
	Secret        string
	QRPayload     string
	RecoveryCodes []string
	Deadline      time.Time

	// Manual-entry fields parsed from the otpauth QR payload.
	Issuer  string
	Account string
}

// LoginEvent is one row of the account's login history.
type LoginEvent struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Succeeded bool      `json:"succeeded"`
	CreatedAt time.Time `json:"created_at"`
}

// RemoteSession is one of the account's active backend sessions.
type RemoteSession struct {
	ID         string    `json:"id"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	Current    bool      `json:"current"`
	LastActive time.Time `json:"last_active"`
}
