// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/guessdex/room"
	"github.com/wfunc/guessdex/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(code string, msgID uint16, data []byte) error
	BroadcastToRoomExcept(code, excludeSessionID string, msgID uint16, data []byte) error
	SendToSession(sessionID string, msgID uint16, data []byte) error
}

// 基于房间的广播器
type RoomBroadcaster struct {
	registry       *room.Registry
	sessionManager *session.Manager
}

func NewRoomBroadcaster(registry *room.Registry, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		registry:       registry,
		sessionManager: sessionManager,
	}
}

func (b *RoomBroadcaster) BroadcastToRoom(code string, msgID uint16, data []byte) error {
	return b.send(code, "", msgID, data)
}

// BroadcastToRoomExcept sends to every member except one, for events the
// requester already received directly.
func (b *RoomBroadcaster) BroadcastToRoomExcept(code, excludeSessionID string, msgID uint16, data []byte) error {
	return b.send(code, excludeSessionID, msgID, data)
}

func (b *RoomBroadcaster) send(code, exclude string, msgID uint16, data []byte) error {
	r, exists := b.registry.Get(code)
	if !exists {
		return ErrRoomNotFound
	}

	for _, id := range r.MemberIDs() {
		if id == exclude {
			continue
		}
		sess, ok := b.sessionManager.Get(id)
		if !ok {
			continue
		}
		// A send failure only affects that connection; the read loop
		// will tear it down.
		_ = sess.Send(msgID, data)
	}
	return nil
}

func (b *RoomBroadcaster) SendToSession(sessionID string, msgID uint16, data []byte) error {
	sess, ok := b.sessionManager.Get(sessionID)
	if !ok {
		return nil
	}
	return sess.Send(msgID, data)
}
