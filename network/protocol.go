package network

// Client commands (1xx room lifecycle, 2xx gameplay).
const (
	MsgTypeHeartbeat  = 1
	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeLeaveRoom  = 103
	MsgTypeSetReady   = 104
	MsgTypeGuess      = 201
)

// Server events (3xx broadcasts and acks, 4xx errors).
const (
	MsgTypeRoomCreated  = 301
	MsgTypeJoined       = 302
	MsgTypeMemberJoined = 303
	MsgTypeMemberLeft   = 304
	MsgTypeLeft         = 305
	MsgTypeReadyUpdate  = 306
	MsgTypeRoundStarted = 307
	MsgTypeGuessResult  = 308
	MsgTypeRoundOver    = 309
	MsgTypeError        = 401
)
