// Package models defines the domain entity and persistence interfaces for the Spotify login service.
//
// The only persistent entity is [User]: one row per Spotify account that has completed the login callback,
// keyed naturally by its Spotify account id.
//
// [UserStore] is the narrow contract the HTTP callback handler needs from persistence: lookup by provider
// identity and insert. [Repository] is the broader CRUD-style contract implemented by the SQLite repository
// and used by the admin CLI.
package models
