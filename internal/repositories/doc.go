// Package repositories implements SQLite persistence for the service's users.
//
// [UserRepository] satisfies both [models.UserStore], the lookup-and-insert contract used by the login
// callback, and [models.Repository] for the admin CLI.
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #42) independent of UUIDs and creation
// timestamps. [NextSequence] increments per-table counters stored in dedicated sequence tables.
package repositories
