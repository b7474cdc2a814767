// room/room.go
package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/guessdex/dex"
	"github.com/wfunc/guessdex/state"
)

// Member is one connection's presence in a room.
type Member struct {
	ID    string `json:"id"`
	Ready bool   `json:"isReady"`
}

// GuessRecord is one submitted guess. Records are append-only for the
// duration of a round and cleared when the round ends.
type GuessRecord struct {
	SessionID  string          `json:"sessionId"`
	Card       *dex.Card       `json:"card"`
	Comparison map[string]bool `json:"comparison"`
	Correct    bool            `json:"correct"`
}

// Room 是游戏房间的核心结构
type Room struct {
	Code         string
	StateMachine state.StateMachine
	CreatedAt    time.Time

	members  []*Member // insertion order = join order
	targetID int
	target   *dex.Card
	guesses  []GuessRecord
	winner   string
	roundAt  time.Time
	mutex    sync.RWMutex
}

// NewRoom 创建一个新房间
func NewRoom(code string) *Room {
	room := &Room{
		Code:      code,
		CreatedAt: time.Now(),
	}
	room.StateMachine = state.NewBaseStateMachine(state.NewLobbyState(room))
	return room
}

// --- 实现 state.RoomContext 接口 ---

func (r *Room) GetCode() string {
	return r.Code
}

func (r *Room) MemberIDs() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, len(r.members))
	for i, m := range r.members {
		ids[i] = m.ID
	}
	return ids
}

func (r *Room) ChangeState(newState state.State) error {
	return r.StateMachine.ChangeState(newState)
}

// --- 房间核心逻辑 ---

// RoundActive reports whether a round is in progress.
func (r *Room) RoundActive() bool {
	return r.StateMachine.GetCurrentState().GetID() == state.StatePlaying
}

// AddMember appends a member in join order. Adding a connection that is
// already present is a no-op, never a duplicate.
func (r *Room) AddMember(sessionID string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, m := range r.members {
		if m.ID == sessionID {
			return false
		}
	}
	r.members = append(r.members, &Member{ID: sessionID})
	return true
}

// RemoveMember removes a member. The second return reports whether the
// room is now empty; empty rooms must be destroyed by the caller.
func (r *Room) RemoveMember(sessionID string) (removed bool, empty bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, m := range r.members {
		if m.ID == sessionID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return true, len(r.members) == 0
		}
	}
	return false, len(r.members) == 0
}

func (r *Room) HasMember(sessionID string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, m := range r.members {
		if m.ID == sessionID {
			return true
		}
	}
	return false
}

// Members returns a snapshot of the member list in join order.
func (r *Room) Members() []Member {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]Member, len(r.members))
	for i, m := range r.members {
		result[i] = *m
	}
	return result
}

func (r *Room) MemberCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.members)
}

// SetReady updates a member's ready flag. Unknown members are a no-op.
func (r *Room) SetReady(sessionID string, ready bool) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, m := range r.members {
		if m.ID == sessionID {
			m.Ready = ready
			return true
		}
	}
	return false
}

// AllReady reports whether every member is ready. A room never exists with
// zero members, so the vacuous case cannot occur in practice.
func (r *Room) AllReady() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, m := range r.members {
		if !m.Ready {
			return false
		}
	}
	return len(r.members) > 0
}

// StartRoundIfReady atomically checks the ready barrier and opens a round.
// It is the sole round-start path, so a ready flag flapping while a round
// is active can never start a second one.
func (r *Room) StartRoundIfReady(targetID int) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if len(r.members) == 0 {
		return false
	}
	for _, m := range r.members {
		if !m.Ready {
			return false
		}
	}
	if r.StateMachine.GetCurrentState().GetID() == state.StatePlaying {
		return false
	}

	r.targetID = targetID
	r.target = nil
	r.guesses = nil
	r.winner = ""
	r.roundAt = time.Now()
	return r.StateMachine.ChangeState(state.NewPlayingState(r)) == nil
}

// TargetID returns the current round's target identifier, 0 when idle.
func (r *Room) TargetID() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.targetID
}

// Target returns the cached target card, nil until loaded.
func (r *Room) Target() *dex.Card {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.target
}

// SetTargetIfUnset installs the target card exactly once per round. A
// slower concurrent loader's result is discarded.
func (r *Room) SetTargetIfUnset(targetID int, card *dex.Card) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.targetID != targetID || r.target != nil {
		return false
	}
	r.target = card
	return true
}

// Guesses returns a snapshot of the round's guess history in submission
// order.
func (r *Room) Guesses() []GuessRecord {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]GuessRecord, len(r.guesses))
	copy(result, r.guesses)
	return result
}

func (r *Room) Winner() string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.winner
}

// GuessOutcome is the room-state result of applying one guess.
type GuessOutcome struct {
	RoundOver  bool
	Winner     string
	Target     *dex.Card
	GuessCount int
	Elapsed    time.Duration
}

// ApplyGuess appends a guess and resolves the round if the guess is correct
// or the guess cap is reached. It re-validates that the round the guess was
// prepared against is still the active one, so a guess whose lookup
// completed after someone else won (or after a reset) is rejected rather
// than appended. On round end every member's ready flag is reset and the
// round state collapses back to idle.
func (r *Room) ApplyGuess(rec GuessRecord, targetID int, maxGuesses int) (*GuessOutcome, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.StateMachine.GetCurrentState().GetID() != state.StatePlaying {
		return nil, false
	}
	if r.targetID != targetID {
		return nil, false
	}

	r.guesses = append(r.guesses, rec)

	out := &GuessOutcome{
		Target:     r.target,
		GuessCount: len(r.guesses),
		Elapsed:    time.Since(r.roundAt),
	}

	capped := maxGuesses > 0 && len(r.guesses) >= maxGuesses
	if !rec.Correct && !capped {
		return out, true
	}

	if rec.Correct {
		r.winner = rec.SessionID
		out.Winner = rec.SessionID
	}
	out.RoundOver = true

	if r.StateMachine.ChangeState(state.NewLobbyState(r)) != nil {
		return out, true
	}
	r.targetID = 0
	r.target = nil
	r.guesses = nil
	for _, m := range r.members {
		m.Ready = false
	}
	return out, true
}

// --- 房间注册表 ---

// codeAlphabet omits easily confused characters so codes stay
// human-enterable.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Registry owns the room-code table. Codes are unique among live rooms;
// once a room is destroyed its code may be reused by an unrelated room.
type Registry struct {
	rooms      map[string]*Room
	codeLength int
	mutex      sync.RWMutex
}

func NewRegistry(codeLength int) *Registry {
	if codeLength <= 0 {
		codeLength = 6
	}
	return &Registry{
		rooms:      make(map[string]*Room),
		codeLength: codeLength,
	}
}

// Create registers a new room with a fresh collision-checked code and the
// creator as its sole, not-ready member.
func (reg *Registry) Create(sessionID string) *Room {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	var code string
	for {
		code = reg.randomCode()
		if _, taken := reg.rooms[code]; !taken {
			break
		}
	}

	room := NewRoom(code)
	room.AddMember(sessionID)
	reg.rooms[code] = room
	return room
}

func (reg *Registry) randomCode() string {
	buf := make([]byte, reg.codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(buf)
}

func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	room, exists := reg.rooms[code]
	return room, exists
}

func (reg *Registry) Remove(code string) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	delete(reg.rooms, code)
}

// Rooms returns a snapshot of every live room.
func (reg *Registry) Rooms() []*Room {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()

	result := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		result = append(result, room)
	}
	return result
}

func (reg *Registry) Count() int {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	return len(reg.rooms)
}

// Leave removes the session from the room and destroys the room the
// instant it empties.
func (reg *Registry) Leave(code, sessionID string) (room *Room, removed bool, destroyed bool) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	room, exists := reg.rooms[code]
	if !exists {
		return nil, false, false
	}
	removed, empty := room.RemoveMember(sessionID)
	if empty {
		delete(reg.rooms, code)
		return room, removed, true
	}
	return room, removed, false
}

// Departure describes one room a disconnecting session was removed from.
type Departure struct {
	Room      *Room
	Destroyed bool
}

// RemoveEverywhere performs the leave logic for every room containing the
// session. Safe to call for a session in zero rooms (the common case) and
// idempotent.
func (reg *Registry) RemoveEverywhere(sessionID string) []Departure {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	var departures []Departure
	for code, room := range reg.rooms {
		removed, empty := room.RemoveMember(sessionID)
		if !removed {
			continue
		}
		if empty {
			delete(reg.rooms, code)
		}
		departures = append(departures, Departure{Room: room, Destroyed: empty})
	}
	return departures
}
