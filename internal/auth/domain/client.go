package domain

import (
	"time"

	"github.com/openmotive/authd/internal/auth/scope"
)

// ClientType distinguishes applications that can hold a secret from those
// that cannot (native/JS apps). The integer values are persisted.
type ClientType int

const (
	ClientConfidential ClientType = 0
	ClientPublic       ClientType = 1
)

// ClientStatus is the administrative lifecycle state of a client. Disabled
// clients fail every issuance operation; rows are never deleted by the core.
type ClientStatus int

const (
	StatusInternal ClientStatus = 0
	StatusTest     ClientStatus = 1
	StatusLive     ClientStatus = 2
	StatusDisabled ClientStatus = 3
)

// EventDelivery records how a client wants platform events pushed to it.
// Delivery itself happens outside this core; the preference is just client
// configuration.
type EventDelivery int

const (
	DeliverNone           EventDelivery = 0
	DeliverWebhook        EventDelivery = 1
	DeliverWebsocket      EventDelivery = 2
	DeliverWebhookFixedIP EventDelivery = 3
	DeliverBoth           EventDelivery = 4
)

// Client is a registered application that requests grants and tokens on
// behalf of users.
type Client struct {
	ID            string // row id (ULID)
	UserID        string // optional owning user
	Name          string
	URL           string
	RedirectURI   string
	WebhookURI    string
	ClientID      string // public identifier (short random token, unique)
	ClientSecret  string // long random token, returned once at registration
	Type          ClientType
	Status        ClientStatus
	Scope         scope.Mask // every scope the client may ever request
	EventDelivery EventDelivery
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
