package sqlite

import (
	"context"
	"time"

	"github.com/openmotive/authd/internal/auth/domain"
	"github.com/openmotive/authd/internal/auth/scope"
)

type grantsRepo struct {
	db dbtx
}

func (r *grantsRepo) CreateGrant(ctx context.Context, g domain.Grant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO grants (id, user_id, client_id, code, redirect_uri, scope, expires, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.ClientID, g.Code, g.RedirectURI, int64(g.Scope),
		g.Expires.UTC(), g.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *grantsRepo) GetGrantByCode(ctx context.Context, code string) (domain.Grant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, client_id, code, redirect_uri, scope, expires, created_at
		FROM grants
		WHERE code = ?`, code)

	var (
		g    domain.Grant
		mask int64
	)
	err := row.Scan(&g.ID, &g.UserID, &g.ClientID, &g.Code, &g.RedirectURI,
		&mask, &g.Expires, &g.CreatedAt)
	if err != nil {
		return domain.Grant{}, mapNotFound(err)
	}
	g.Scope = scope.Mask(mask)
	return g, nil
}

func (r *grantsRepo) DeleteGrant(ctx context.Context, id string) error {
	return requireRow(r.db.ExecContext(ctx, `DELETE FROM grants WHERE id = ?`, id))
}

func (r *grantsRepo) DeleteExpiredGrants(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM grants WHERE expires <= ?`, now.UTC())
	return err
}
