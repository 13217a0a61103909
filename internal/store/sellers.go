package store

import (
	"context"

	"github.com/google/uuid"

	"bookable/backend/internal/domain"
)

// SellerRepository persists calendar-connection records. Implementations
// return sellers with the refresh token already decrypted; callers must not
// serialize it outward.
type SellerRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.Seller, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Seller, error)
	List(ctx context.Context) ([]domain.Seller, error)
	// SaveConnection upserts the seller's delegated-access credential and
	// marks the calendar connected.
	SaveConnection(ctx context.Context, email, name, refreshToken string) (domain.Seller, error)
	SetConnected(ctx context.Context, email string, connected bool) error
}
