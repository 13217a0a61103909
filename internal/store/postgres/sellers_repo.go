package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"bookable/backend/internal/domain"
	"bookable/backend/internal/store"
)

type SellerRepo struct {
	db     *bun.DB
	cipher *tokenCipher
}

// NewSellerRepo builds a seller repository that encrypts refresh tokens at
// rest with a key derived from encryptionSecret.
func NewSellerRepo(db *bun.DB, encryptionSecret string) (*SellerRepo, error) {
	c, err := newTokenCipher(encryptionSecret)
	if err != nil {
		return nil, err
	}
	return &SellerRepo{db: db, cipher: c}, nil
}

func (r *SellerRepo) FindByEmail(ctx context.Context, email string) (domain.Seller, error) {
	var m domain.Seller
	err := r.db.NewSelect().
		Model(&m).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Seller{}, store.ErrNotFound
		}
		return domain.Seller{}, err
	}
	return r.withDecryptedToken(m)
}

func (r *SellerRepo) FindByID(ctx context.Context, id uuid.UUID) (domain.Seller, error) {
	var m domain.Seller
	err := r.db.NewSelect().
		Model(&m).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Seller{}, store.ErrNotFound
		}
		return domain.Seller{}, err
	}
	return r.withDecryptedToken(m)
}

func (r *SellerRepo) List(ctx context.Context) ([]domain.Seller, error) {
	var rows []domain.Seller
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("email ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Seller, 0, len(rows))
	for _, m := range rows {
		s, err := r.withDecryptedToken(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *SellerRepo) SaveConnection(ctx context.Context, email, name, refreshToken string) (domain.Seller, error) {
	encrypted, err := r.cipher.Encrypt(refreshToken)
	if err != nil {
		return domain.Seller{}, err
	}

	m := domain.Seller{
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Name:              name,
		RefreshToken:      encrypted,
		CalendarConnected: true,
	}
	_, err = r.db.NewInsert().
		Model(&m).
		On("CONFLICT (email) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("refresh_token = EXCLUDED.refresh_token").
		Set("calendar_connected = TRUE").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Seller{}, err
	}

	m.RefreshToken = refreshToken
	return m, nil
}

func (r *SellerRepo) SetConnected(ctx context.Context, email string, connected bool) error {
	q := r.db.NewUpdate().
		Model((*domain.Seller)(nil)).
		Set("calendar_connected = ?", connected).
		Set("updated_at = ?", time.Now().UTC()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	if !connected {
		q = q.Set("refresh_token = ''")
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SellerRepo) withDecryptedToken(m domain.Seller) (domain.Seller, error) {
	token, err := r.cipher.Decrypt(m.RefreshToken)
	if err != nil {
		return domain.Seller{}, err
	}
	m.RefreshToken = token
	return m, nil
}
