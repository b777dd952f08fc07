// Package entity defines the entities and errors used in the application.
// It includes the Link struct, which represents a shortened link owned by the
// user, the UserProfile struct, and the error taxonomy shared by all layers.
package entity

import "time"

// Link represents a shortened link as returned by the backend.
type Link struct {
	ID          int64     // ID is the server-assigned identifier of the link.
	OriginalURL string    // OriginalURL is the full URL that the short code resolves to.
	CustomAlias string    // CustomAlias is the user-chosen substitute for the generated code, empty if none.
	ShortCode   string    // ShortCode is the code used to shorten the original URL.
	ShortURL    string    // ShortURL is the complete shortened URL.
	Clicks      int64     // Clicks is the number of times the shortened URL has been accessed. Server-authoritative.
	CreatedAt   time.Time // CreatedAt is the timestamp when the link was created.
}

// UserProfile represents the authenticated user as reported by the backend.
type UserProfile struct {
	ID       int64  // ID is the unique identifier of the user.
	Username string // Username is the user's login name.
}
