package state

const (
	StateLobby   = "lobby"
	StatePlaying = "playing"
)

// LobbyState is the idle phase between rounds: members join, leave and
// flip ready flags. The ready barrier transitions the room to PlayingState.
type LobbyState struct {
	RoomStateBase
}

func NewLobbyState(room RoomContext) *LobbyState {
	return &LobbyState{
		RoomStateBase: RoomStateBase{
			ID:   StateLobby,
			Room: room,
		},
	}
}

// PlayingState is an active round: a target has been selected and guesses
// are accepted until someone matches it or the guess cap is reached.
type PlayingState struct {
	RoomStateBase
}

func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{
		RoomStateBase: RoomStateBase{
			ID:   StatePlaying,
			Room: room,
		},
	}
}
