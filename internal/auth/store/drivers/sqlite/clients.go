package sqlite

import (
	"context"
	"time"

	"github.com/openmotive/authd/internal/auth/domain"
	"github.com/openmotive/authd/internal/auth/scope"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `id, user_id, name, url, redirect_uri, webhook_uri,
	client_id, client_secret, client_type, status, scope,
	event_delivery_preference, created_date, last_updated_date`

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (
			id, user_id, name, url, redirect_uri, webhook_uri,
			client_id, client_secret, client_type, status, scope,
			event_delivery_preference, created_date, last_updated_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.URL, c.RedirectURI, c.WebhookURI,
		c.ClientID, c.ClientSecret, int(c.Type), int(c.Status), int64(c.Scope),
		int(c.EventDelivery), c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *clientsRepo) GetClientByClientID(ctx context.Context, clientID string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE client_id = ?`, clientID)
	return scanClient(row)
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		ORDER BY created_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) UpdateClientStatus(ctx context.Context, clientID string, status domain.ClientStatus) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE clients
		SET status = ?, last_updated_date = ?
		WHERE client_id = ?`,
		int(status), time.Now().UTC(), clientID))
}

func (r *clientsRepo) UpdateClientScope(ctx context.Context, clientID string, mask scope.Mask) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE clients
		SET scope = ?, last_updated_date = ?
		WHERE client_id = ?`,
		int64(mask), time.Now().UTC(), clientID))
}

func (r *clientsRepo) UpdateClientRedirectURI(ctx context.Context, clientID, redirectURI string) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE clients
		SET redirect_uri = ?, last_updated_date = ?
		WHERE client_id = ?`,
		redirectURI, time.Now().UTC(), clientID))
}

func (r *clientsRepo) UpdateClientSecret(ctx context.Context, clientID, secret string) error {
	return requireRow(r.db.ExecContext(ctx, `
		UPDATE clients
		SET client_secret = ?, last_updated_date = ?
		WHERE client_id = ?`,
		secret, time.Now().UTC(), clientID))
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanClient(s scanner) (domain.Client, error) {
	var (
		c                            domain.Client
		clientType, status, delivery int
		mask                         int64
	)
	err := s.Scan(
		&c.ID, &c.UserID, &c.Name, &c.URL, &c.RedirectURI, &c.WebhookURI,
		&c.ClientID, &c.ClientSecret, &clientType, &status, &mask,
		&delivery, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	c.Type = domain.ClientType(clientType)
	c.Status = domain.ClientStatus(status)
	c.Scope = scope.Mask(mask)
	c.EventDelivery = domain.EventDelivery(delivery)
	return c, nil
}
