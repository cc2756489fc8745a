package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"regexp"

	"github.com/openmotive/authd/internal/auth/domain"
	"github.com/openmotive/authd/internal/auth/policy"
	"github.com/openmotive/authd/internal/auth/scope"
	"github.com/openmotive/authd/internal/auth/store"
	"github.com/openmotive/authd/pkg/cryptox"
	"github.com/openmotive/authd/pkg/idx"
	"github.com/openmotive/authd/pkg/slogx"
)

// Redirect and webhook URIs must carry a URI authority.
var uriWithAuthority = regexp.MustCompile(`^\S*//\S*$`)

// ClientService manages registered applications. Clients are never deleted
// by the core; disabling one makes every issuance path fail instead.
type ClientService struct {
	Store  store.Store
	Scopes *scope.Registry
	Clock  policy.Clock
}

// RegisterClientParams are the caller-supplied fields for a new client.
type RegisterClientParams struct {
	UserID        string // optional owning user
	Name          string
	URL           string
	RedirectURI   string
	WebhookURI    string // optional
	Type          domain.ClientType
	Scope         scope.Mask // every scope the client may ever request
	EventDelivery domain.EventDelivery
}

// Register creates a new client with fresh credentials. The returned
// Client carries the plaintext secret; it is the caller's one chance to
// hand it to the application.
func (s *ClientService) Register(ctx context.Context, p RegisterClientParams) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	if !uriWithAuthority.MatchString(p.RedirectURI) {
		return domain.Client{}, ErrInvalidRedirect
	}
	if p.WebhookURI != "" && !uriWithAuthority.MatchString(p.WebhookURI) {
		return domain.Client{}, ErrInvalidRedirect
	}
	if s.Scopes != nil && !s.Scopes.Valid(p.Scope) {
		return domain.Client{}, ErrInvalidScope
	}

	clientID, err := cryptox.ShortToken()
	if err != nil {
		return domain.Client{}, err
	}
	secret, err := cryptox.LongToken()
	if err != nil {
		return domain.Client{}, err
	}

	now := nowFrom(s.Clock)
	c := domain.Client{
		ID:            idx.New().String(),
		UserID:        p.UserID,
		Name:          p.Name,
		URL:           p.URL,
		RedirectURI:   p.RedirectURI,
		WebhookURI:    p.WebhookURI,
		ClientID:      clientID,
		ClientSecret:  secret,
		Type:          p.Type,
		Status:        domain.StatusTest,
		Scope:         p.Scope,
		EventDelivery: p.EventDelivery,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Store.Clients().CreateClient(ctx, c); err != nil {
		l.Error("failed to create client", "error", err)
		return domain.Client{}, err
	}

	l.Info("client registered", "client_id", c.ClientID, "name", c.Name, "type", int(c.Type))
	return c, nil
}

// Get fetches a client by its public identifier.
func (s *ClientService) Get(ctx context.Context, clientID string) (domain.Client, error) {
	c, err := s.Store.Clients().GetClientByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, err
	}
	return c, nil
}

// List returns all clients, newest first.
func (s *ClientService) List(ctx context.Context) ([]domain.Client, error) {
	return s.Store.Clients().ListClients(ctx)
}

// UpdateStatus moves a client between Internal/Test/Live/Disabled.
func (s *ClientService) UpdateStatus(ctx context.Context, clientID string, status domain.ClientStatus) error {
	err := s.Store.Clients().UpdateClientStatus(ctx, clientID, status)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidClient
	}
	if err == nil {
		slogx.FromContext(ctx).Info("client status updated", "client_id", clientID, "status", int(status))
	}
	return err
}

// UpdateScope replaces the set of scopes the client may request.
func (s *ClientService) UpdateScope(ctx context.Context, clientID string, mask scope.Mask) error {
	if s.Scopes != nil && !s.Scopes.Valid(mask) {
		return ErrInvalidScope
	}
	err := s.Store.Clients().UpdateClientScope(ctx, clientID, mask)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidClient
	}
	return err
}

// UpdateRedirectURI replaces the registered callback URI.
func (s *ClientService) UpdateRedirectURI(ctx context.Context, clientID, redirectURI string) error {
	if !uriWithAuthority.MatchString(redirectURI) {
		return ErrInvalidRedirect
	}
	err := s.Store.Clients().UpdateClientRedirectURI(ctx, clientID, redirectURI)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidClient
	}
	return err
}

// RotateSecret replaces the client secret and returns the new plaintext
// value (shown once).
func (s *ClientService) RotateSecret(ctx context.Context, clientID string) (string, error) {
	secret, err := cryptox.LongToken()
	if err != nil {
		return "", err
	}
	if err := s.Store.Clients().UpdateClientSecret(ctx, clientID, secret); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidClient
		}
		return "", err
	}
	slogx.FromContext(ctx).Info("client secret rotated", "client_id", clientID)
	return secret, nil
}

// VerifySecret compares a presented secret against the client's in
// constant time.
func VerifySecret(c domain.Client, secret string) bool {
	if secret == "" || c.ClientSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.ClientSecret), []byte(secret)) == 1
}
