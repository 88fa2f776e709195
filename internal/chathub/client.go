package chathub

import "campuscart/backend/internal/models"

// Client is the interface for any type of connection registered with the hub.
// It abstracts the underlying transport so the hub can manage connections uniformly.
type Client interface {
	// GetID returns the connection id. A user may hold several connections.
	GetID() string
	// GetUserID returns the id of the authenticated user behind the connection.
	GetUserID() string
	// Identity returns the user snapshot taken when the connection was authenticated.
	Identity() models.Identity

	// Send queues an encoded frame without blocking. It reports false when the client
	// cannot take it (buffer full or already closed).
	Send(frame []byte) bool

	// Run starts the client's read and write pumps.
	Run()
	// Close stops delivery to the client and shuts the connection down.
	Close()
}
