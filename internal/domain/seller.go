package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Seller is the calendar-connection record for a seller identity. The
// refresh token is a revocable delegated-access credential; it is stored
// encrypted and treated as opaque everywhere outside the store.
type Seller struct {
	bun.BaseModel `bun:"table:sellers"`

	ID                uuid.UUID `bun:"id,pk,type:uuid"`
	Email             string    `bun:"email,notnull,unique"`
	Name              string    `bun:"name"`
	RefreshToken      string    `bun:"refresh_token"`
	CalendarConnected bool      `bun:"calendar_connected,notnull"`
	CreatedAt         time.Time `bun:"created_at,notnull"`
	UpdatedAt         time.Time `bun:"updated_at,notnull"`
}

func (s *Seller) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}
