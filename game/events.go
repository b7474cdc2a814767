// game/events.go
package game

import (
	"github.com/wfunc/guessdex/dex"
	"github.com/wfunc/guessdex/room"
)

type RoomCreatedEvent struct {
	Code    string        `json:"code"`
	Members []room.Member `json:"members"`
}

// JoinedEvent is returned to the joiner alone. When a round is active it
// carries the target identifier and the existing guess history so a late
// joiner can reconcile, but never the target's attributes.
type JoinedEvent struct {
	Code        string             `json:"code"`
	Members     []room.Member      `json:"members"`
	RoundActive bool               `json:"roundActive"`
	TargetID    int                `json:"targetId,omitempty"`
	Guesses     []room.GuessRecord `json:"guesses,omitempty"`
}

type MemberJoinedEvent struct {
	Code    string        `json:"code"`
	Members []room.Member `json:"members"`
}

type MemberLeftEvent struct {
	Code    string        `json:"code"`
	Members []room.Member `json:"members"`
}

type LeftEvent struct {
	Code string `json:"code"`
}

type ReadyUpdateEvent struct {
	Code        string        `json:"code"`
	Members     []room.Member `json:"members"`
	AllReady    bool          `json:"allReady"`
	RoundActive bool          `json:"roundActive"`
}

// RoundStartedEvent deliberately carries only the target identifier;
// attribute data stays server-side until the round is resolved.
type RoundStartedEvent struct {
	Code     string `json:"code"`
	TargetID int    `json:"targetId"`
}

type GuessResultEvent struct {
	Code       string          `json:"code"`
	SessionID  string          `json:"sessionId"`
	Name       string          `json:"name"`
	Card       *dex.Card       `json:"card"`
	Comparison map[string]bool `json:"comparison"`
	Correct    bool            `json:"correct"`
}

// RoundOverEvent reveals the target once the round is legitimately solved
// or exhausted. Winner is empty when the guess cap closed the round.
type RoundOverEvent struct {
	Code   string    `json:"code"`
	Winner string    `json:"winner,omitempty"`
	Target *dex.Card `json:"target"`
}

type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
