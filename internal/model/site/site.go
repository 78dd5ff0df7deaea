// Package site holds the tenant-site records exchanged with the server.
package site

// Encryption modes a site can report for its extracted data artifacts.
const (
	ModeEnforced = "enforced"
	ModeEnabled  = "enabled"
	ModeDisabled = "disabled"
)

// Site is a read-only snapshot of one tenant site as returned by the
// server. The authoritative copy lives server-side; ID is the opaque
// internal identifier while ContentURL is the URL-safe short name.
type Site struct {
	ID             string
	ContentURL     string
	Name           string
	EncryptionMode string
}

// Group is a named user group within a site.
type Group struct {
	ID   string
	Name string
}

// User is a member of a site group.
type User struct {
	ID       string
	Name     string
	SiteRole string
}
