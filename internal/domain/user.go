package domain

import "time"

const DefaultProfilePictureURL = "https://www.gravatar.com/avatar/?s=200&r=pg&d=mp"

type User struct {
	ID                string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email             string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	UserName          string     `gorm:"size:100;not null" json:"user_name"`
	FirstName         string     `gorm:"size:100;not null" json:"first_name"`
	LastName          string     `gorm:"size:100;not null" json:"last_name"`
	Bio               string     `gorm:"size:1024" json:"bio,omitempty"`
	PhoneNumber       string     `gorm:"size:32" json:"phone_number,omitempty"`
	ProfilePictureURL string     `gorm:"size:1024" json:"profile_picture_url"`
	DOB               *time.Time `gorm:"column:dob;type:date" json:"dob,omitempty"`
	IDVerifiedAt      *time.Time `json:"id_verified_at,omitempty"`
	IsActive          bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
