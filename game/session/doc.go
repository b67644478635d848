// Package session keeps Power Four game sessions alive between requests.
//
// A Manager maps session IDs to a service.Session, each owning its own
// engine.GameEngine. IDs are matched case-insensitively; an empty ID on
// Create gets a random 4-character hex ID that is checked against both
// memory and persistence.
//
// Persistence:
//
// When built with NewManagerWithPersistence the manager writes every
// session through a SessionPersistence. Two implementations exist:
//
//   - FilePersistence stores one JSON document per session in a directory
//   - PostgresPersistence upserts sessions into a jsonb table using pgx
//
// A persisted session records the preset ID it was created from, so a
// restart rebuilds the engine with the same rules before restoring the
// board. Get transparently reloads sessions that are on disk but not in
// memory, which is also how CleanupExpiredSessions evictions come back.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configs)
//	if err != nil {
//		return err
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		return err
//	}
//
//	sess, err := manager.Create("", "powerups", preset)
package session
