package app

import "errors"

var (
	// ErrSessionNotFound is returned when the session id is unknown to the store.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEventLogMismatch is returned when a persisted log's quiz uid/version
	// does not match the freshly compiled definition it would replay against.
	ErrEventLogMismatch = errors.New("event log does not match quiz definition")
	// ErrEventLogNotFound is returned by event log stores for unknown sessions.
	ErrEventLogNotFound = errors.New("event log not found")
)
