// state/interfaces.go
package state

// Member defines the minimal interface for a room member that a state needs
// to interact with.
type Member interface {
	GetID() string
}

// RoomContext defines the interface a Room must implement to be driven by
// the state machine. This breaks the import cycle between room and state.
type RoomContext interface {
	GetCode() string
	MemberIDs() []string
	ChangeState(newState State) error
}
