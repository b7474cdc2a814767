// game/errors.go
package game

import "errors"

// Command errors. All of them are connection-local: the server reports
// them to the requester only and never broadcasts or drops the connection.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrGameNotActive = errors.New("no active round in this room")
	ErrLookupFailed  = errors.New("entity lookup failed")
)

// Wire error codes carried by the error event.
const (
	CodeRoomNotFound   = "room_not_found"
	CodeGameNotActive  = "game_not_active"
	CodeEntityNotFound = "entity_not_found"
	CodeLookupFailed   = "lookup_failed"
)
