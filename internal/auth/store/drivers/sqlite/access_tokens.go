package sqlite

import (
	"context"
	"time"

	"github.com/openmotive/authd/internal/auth/domain"
	"github.com/openmotive/authd/internal/auth/scope"
)

type accessTokensRepo struct {
	db dbtx
}

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_tokens (id, user_id, client_id, token, expires, scope, type, is_deleted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.ClientID, t.Token, t.Expires.UTC(), int64(t.Scope),
		t.Type, t.Deleted, t.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *accessTokensRepo) GetLiveAccessTokenByToken(ctx context.Context, token string) (domain.AccessToken, error) {
	return r.get(ctx, `token = ? AND is_deleted = FALSE`, token)
}

func (r *accessTokensRepo) GetAccessTokenByID(ctx context.Context, id string) (domain.AccessToken, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *accessTokensRepo) get(ctx context.Context, where string, arg any) (domain.AccessToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, token, expires, scope, type, is_deleted, created_at
		FROM access_tokens
		WHERE `+where, arg)

	var (
		t    domain.AccessToken
		mask int64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.ClientID, &t.Token, &t.Expires,
		&mask, &t.Type, &t.Deleted, &t.CreatedAt)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}
	t.Scope = scope.Mask(mask)
	return t, nil
}

func (r *accessTokensRepo) SoftDeleteAccessToken(ctx context.Context, id string) error {
	// Idempotent on purpose: revoking twice, or revoking a token that never
	// existed, is not an error.
	_, err := r.db.ExecContext(ctx, `
		UPDATE access_tokens SET is_deleted = TRUE WHERE id = ?`, id)
	return err
}

func (r *accessTokensRepo) PurgeDeletedAccessTokens(ctx context.Context, before time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM access_tokens
		WHERE is_deleted = TRUE AND created_at < ?`, before.UTC())
	return err
}
