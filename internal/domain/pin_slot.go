package domain

import "time"

type PinPurpose string

const (
	PinPurposeEmailVerification PinPurpose = "email_verification"
	PinPurposePasswordReset     PinPurpose = "password_reset"
)

func (p PinPurpose) Valid() bool {
	switch p {
	case PinPurposeEmailVerification, PinPurposePasswordReset:
		return true
	default:
		return false
	}
}

// PinSlot is the single outstanding pin for an (identity, purpose) pair.
// Issuing a new pin overwrites the slot; consuming or expiring it deletes it.
type PinSlot struct {
	Identity  string     `gorm:"primaryKey;type:varchar(36)" json:"identity"`
	Purpose   PinPurpose `gorm:"primaryKey;size:32" json:"purpose"`
	PinHash   string     `gorm:"size:1024;not null" json:"-"`
	IssuedAt  time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt time.Time  `gorm:"not null;index:idx_pin_slots_expires_at" json:"expires_at"`
}
