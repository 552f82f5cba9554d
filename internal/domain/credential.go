package domain

import "time"

// Credential holds the secret material for one user identity. PasswordHash is
// excluded from the default repository projection and never serialized.
type Credential struct {
	Identity          string     `gorm:"primaryKey;type:varchar(36)" json:"identity"`
	PasswordHash      string     `gorm:"size:1024;not null" json:"-"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	EmailVerifiedAt   *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (c Credential) EmailVerified() bool {
	return c.EmailVerifiedAt != nil
}
