package sqlite

import (
	"context"
	"time"

	"github.com/openmotive/authd/internal/auth/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	// The partial unique index on access_token_id (expired = FALSE) turns a
	// second live binding into ErrAlreadyExists.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, client_id, access_token_id, token, expired, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.ClientID, t.AccessTokenID, t.Token, t.Expired,
		t.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByToken(ctx context.Context, token string) (domain.RefreshToken, error) {
	return r.get(ctx, `token = ?`, token)
}

func (r *refreshTokensRepo) GetActiveRefreshTokenByAccessTokenID(ctx context.Context, accessTokenID string) (domain.RefreshToken, error) {
	return r.get(ctx, `expired = FALSE AND access_token_id = ?`, accessTokenID)
}

func (r *refreshTokensRepo) get(ctx context.Context, where string, arg any) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, access_token_id, token, expired, created_at
		FROM refresh_tokens
		WHERE `+where, arg)

	var t domain.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.ClientID, &t.AccessTokenID,
		&t.Token, &t.Expired, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) ExpireRefreshToken(ctx context.Context, id string) error {
	// Guarded on expired = FALSE so two concurrent rotations of the same
	// token see exactly one affected row between them.
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET expired = TRUE
		WHERE id = ? AND expired = FALSE`, id))
}

func (r *refreshTokensRepo) PurgeExpiredRefreshTokens(ctx context.Context, before time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE expired = TRUE AND created_at < ?`, before.UTC())
	return err
}
