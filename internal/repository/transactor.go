package repository

import (
	"context"

	"gorm.io/gorm"
)

type Repositories struct {
	Users       UserRepository
	Credentials CredentialRepository
	Pins        PinSlotRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:       NewUserRepository(db),
		Credentials: NewCredentialRepository(db),
		Pins:        NewPinSlotRepository(db),
	}
}

// Transactor runs fn against repositories bound to one database transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

type GormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
	return ClassifyError(err)
}
