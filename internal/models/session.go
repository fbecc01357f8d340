package models

// Session represents an authenticated API session resolved from the
// Authorization header by the auth middleware.
type Session struct {
	Token     string `gorm:"primaryKey;size:64" json:"-"`
	UserEmail string `gorm:"not null;size:255" json:"user_email"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"`
	ExpiresAt int64  `gorm:"not null;index" json:"expires_at"`
}

// TableName returns the table name for Session
func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its expiry, given the
// current time in milliseconds since epoch.
func (s *Session) Expired(nowMillis int64) bool {
	return s.ExpiresAt <= nowMillis
}
