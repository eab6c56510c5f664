package models

// User is an account within a single authority.
//
// UserID is the fully qualified identifier (e.g. "acct:bob@example.com")
// and is the value annotations reference as their author.
type User struct {
	UserID      string
	Username    string
	Authority   string
	DisplayName string
	Admin       bool
	Staff       bool
	Groups      []Group
}

// Group is a shared space annotations are published into.
//
// Pubid is the group's public identifier used in principal tokens and
// API payloads. CreatorUserID identifies the user who created the group
// and may moderate annotations within it.
type Group struct {
	Pubid         string
	Name          string
	Authority     string
	CreatorUserID string
}
