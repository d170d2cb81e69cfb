package store

import (
	"context"
	"errors"

	"masapos/backend/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")
)

// SalesRepository is the append-only record log the engine reads from.
type SalesRepository interface {
	ListSales(ctx context.Context) ([]domain.SaleRecord, error)
	GetSale(ctx context.Context, id string) (*domain.SaleRecord, error)
	CreateSale(ctx context.Context, record domain.SaleRecord) (*domain.SaleRecord, error)
	DeleteSale(ctx context.Context, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}

type Repository interface {
	SalesRepository
	UserRepository
}
