// game/engine.go
package game

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/wfunc/guessdex/broadcast"
	"github.com/wfunc/guessdex/config"
	"github.com/wfunc/guessdex/dex"
	"github.com/wfunc/guessdex/logger"
	"github.com/wfunc/guessdex/network"
	"github.com/wfunc/guessdex/room"
)

// Recorder archives finished rounds. Implemented by services.RecordService.
type Recorder interface {
	SaveRound(code, winner, targetName string, guessCount int, duration time.Duration)
}

// Metrics is the slice of the monitor the engine reports to.
type Metrics interface {
	SetActiveRooms(count int)
	IncRoundsStarted()
	IncGuesses()
	ObserveLookupLatency(duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) SaveRound(string, string, string, int, time.Duration) {}

type noopMetrics struct{}

func (noopMetrics) SetActiveRooms(int)                {}
func (noopMetrics) IncRoundsStarted()                 {}
func (noopMetrics) IncGuesses()                       {}
func (noopMetrics) ObserveLookupLatency(time.Duration) {}

// Engine is the single dispatch point for every room command. It owns no
// network handle: responses go through the broadcaster and errors are
// returned to the server for unicast delivery.
type Engine struct {
	cfg         config.GameConfig
	registry    *room.Registry
	broadcaster broadcast.Broadcaster
	lookup      dex.Lookup
	recorder    Recorder
	metrics     Metrics
}

func NewEngine(cfg config.GameConfig, registry *room.Registry, broadcaster broadcast.Broadcaster, lookup dex.Lookup) *Engine {
	if cfg.EntityMaxID <= 0 {
		cfg.EntityMaxID = 1025
	}
	return &Engine{
		cfg:         cfg,
		registry:    registry,
		broadcaster: broadcaster,
		lookup:      lookup,
		recorder:    noopRecorder{},
		metrics:     noopMetrics{},
	}
}

func (e *Engine) SetRecorder(r Recorder) {
	if r != nil {
		e.recorder = r
	}
}

func (e *Engine) SetMetrics(m Metrics) {
	if m != nil {
		e.metrics = m
	}
}

// CreateRoom registers a new room with the requester as sole member and
// returns the code to the requester alone.
func (e *Engine) CreateRoom(sessionID string) error {
	r := e.registry.Create(sessionID)
	e.metrics.SetActiveRooms(e.registry.Count())

	logger.Log.Infof("Session %s created room %s", sessionID, r.Code)

	e.unicast(sessionID, network.MsgTypeRoomCreated, RoomCreatedEvent{
		Code:    r.Code,
		Members: r.Members(),
	})
	return nil
}

// JoinRoom adds the session to the room. Re-joining is a no-op. The joiner
// receives the full member list plus the round snapshot it needs to
// reconcile into an in-progress round; everyone else learns of the arrival.
func (e *Engine) JoinRoom(sessionID, code string) error {
	r, exists := e.registry.Get(code)
	if !exists {
		return ErrRoomNotFound
	}

	added := r.AddMember(sessionID)

	joined := JoinedEvent{
		Code:        code,
		Members:     r.Members(),
		RoundActive: r.RoundActive(),
	}
	if joined.RoundActive {
		joined.TargetID = r.TargetID()
		joined.Guesses = r.Guesses()
	}
	e.unicast(sessionID, network.MsgTypeJoined, joined)

	if added {
		logger.Log.Infof("Session %s joined room %s", sessionID, code)
		e.broadcastExcept(code, sessionID, network.MsgTypeMemberJoined, MemberJoinedEvent{
			Code:    code,
			Members: r.Members(),
		})
	}
	return nil
}

// LeaveRoom removes the session. Leaving a room you are not in, or one that
// no longer exists, still acks: leave is idempotent by design.
func (e *Engine) LeaveRoom(sessionID, code string) error {
	r, removed, destroyed := e.registry.Leave(code, sessionID)

	e.unicast(sessionID, network.MsgTypeLeft, LeftEvent{Code: code})

	if removed && !destroyed {
		e.broadcast(code, network.MsgTypeMemberLeft, MemberLeftEvent{
			Code:    code,
			Members: r.Members(),
		})
	}
	if destroyed {
		logger.Log.Infof("Room %s destroyed (last member left)", code)
	}
	e.metrics.SetActiveRooms(e.registry.Count())
	return nil
}

// Disconnect performs the leave logic for every room containing the
// session. Zero rooms is the common case.
func (e *Engine) Disconnect(sessionID string) {
	for _, dep := range e.registry.RemoveEverywhere(sessionID) {
		if dep.Destroyed {
			logger.Log.Infof("Room %s destroyed (last member disconnected)", dep.Room.Code)
			continue
		}
		e.broadcast(dep.Room.Code, network.MsgTypeMemberLeft, MemberLeftEvent{
			Code:    dep.Room.Code,
			Members: dep.Room.Members(),
		})
	}
	e.metrics.SetActiveRooms(e.registry.Count())
}

// SetReady updates the member's ready flag and re-evaluates the barrier.
// The barrier is the sole round-start trigger: when every member is ready
// and no round is active, a round starts.
func (e *Engine) SetReady(sessionID, code string, ready bool) error {
	r, exists := e.registry.Get(code)
	if !exists {
		return ErrRoomNotFound
	}

	r.SetReady(sessionID, ready)

	targetID := rand.Intn(e.cfg.EntityMaxID) + 1
	started := r.StartRoundIfReady(targetID)

	e.broadcast(code, network.MsgTypeReadyUpdate, ReadyUpdateEvent{
		Code:        code,
		Members:     r.Members(),
		AllReady:    r.AllReady(),
		RoundActive: r.RoundActive(),
	})

	if started {
		logger.Log.Infof("Room %s round started, target id %d", code, targetID)
		e.metrics.IncRoundsStarted()
		e.broadcast(code, network.MsgTypeRoundStarted, RoundStartedEvent{
			Code:     code,
			TargetID: targetID,
		})
		// Prefetch so the first guess does not pay the full lookup
		// round trip. Loading is idempotent; the guess path is the
		// fallback when this fails.
		go func() {
			if _, err := e.ensureTarget(r, targetID); err != nil {
				logger.Log.Warnf("Room %s target prefetch failed: %v", code, err)
			}
		}()
	}
	return nil
}

// ensureTarget loads the target card at most once per round. Concurrent
// callers may both fetch, but only the first completed result is installed;
// the loser's copy is discarded.
func (e *Engine) ensureTarget(r *room.Room, targetID int) (*dex.Card, error) {
	if card := r.Target(); card != nil {
		return card, nil
	}

	start := time.Now()
	card, err := e.lookup.Card(strconv.Itoa(targetID))
	e.metrics.ObserveLookupLatency(time.Since(start))
	if err != nil {
		return nil, err
	}

	r.SetTargetIfUnset(targetID, card)
	if installed := r.Target(); installed != nil {
		return installed, nil
	}
	// The round changed under us; treat the load as void.
	return nil, ErrGameNotActive
}

// SubmitGuess resolves the guessed name, compares it against the target and
// broadcasts the result to every member. A correct guess, or the guess cap,
// resolves the round: the target is revealed, ready flags reset, and the
// room returns to the lobby.
func (e *Engine) SubmitGuess(sessionID, code, name string) error {
	r, exists := e.registry.Get(code)
	if !exists {
		return ErrRoomNotFound
	}
	if !r.RoundActive() {
		return ErrGameNotActive
	}
	targetID := r.TargetID()
	if targetID == 0 {
		return ErrGameNotActive
	}

	start := time.Now()
	card, err := e.lookup.Card(dex.CanonicalName(name))
	e.metrics.ObserveLookupLatency(time.Since(start))
	if err != nil {
		if errors.Is(err, dex.ErrNotFound) {
			// Normal outcome: the name resolves to nothing. Room
			// state is untouched and the guess does not count.
			return dex.ErrNotFound
		}
		logger.Log.Warnf("Room %s guess lookup failed: %v", code, err)
		return ErrLookupFailed
	}

	target, err := e.ensureTarget(r, targetID)
	if err != nil {
		if errors.Is(err, ErrGameNotActive) {
			return ErrGameNotActive
		}
		logger.Log.Errorf("Room %s target load failed: %v", code, err)
		return ErrLookupFailed
	}

	rec := room.GuessRecord{
		SessionID:  sessionID,
		Card:       card,
		Comparison: Compare(card, target),
		Correct:    card.Name == target.Name,
	}

	// Re-validated under the room lock: the round may have been resolved
	// by a concurrent guess while our lookups were in flight.
	outcome, applied := r.ApplyGuess(rec, targetID, e.cfg.MaxGuesses)
	if !applied {
		return ErrGameNotActive
	}

	e.metrics.IncGuesses()
	e.broadcast(code, network.MsgTypeGuessResult, GuessResultEvent{
		Code:       code,
		SessionID:  sessionID,
		Name:       card.Name,
		Card:       card,
		Comparison: rec.Comparison,
		Correct:    rec.Correct,
	})

	if outcome.RoundOver {
		logger.Log.Infof("Room %s round over, winner=%q, guesses=%d", code, outcome.Winner, outcome.GuessCount)
		e.broadcast(code, network.MsgTypeRoundOver, RoundOverEvent{
			Code:   code,
			Winner: outcome.Winner,
			Target: target,
		})
		go e.recorder.SaveRound(code, outcome.Winner, target.Name, outcome.GuessCount, outcome.Elapsed)
	}
	return nil
}

func (e *Engine) unicast(sessionID string, msgID uint16, event interface{}) {
	data, _ := json.Marshal(event)
	if err := e.broadcaster.SendToSession(sessionID, msgID, data); err != nil {
		logger.Log.Warnf("Send to session %s failed: %v", sessionID, err)
	}
}

func (e *Engine) broadcast(code string, msgID uint16, event interface{}) {
	data, _ := json.Marshal(event)
	if err := e.broadcaster.BroadcastToRoom(code, msgID, data); err != nil {
		logger.Log.Warnf("Broadcast to room %s failed: %v", code, err)
	}
}

func (e *Engine) broadcastExcept(code, exclude string, msgID uint16, event interface{}) {
	data, _ := json.Marshal(event)
	if err := e.broadcaster.BroadcastToRoomExcept(code, exclude, msgID, data); err != nil {
		logger.Log.Warnf("Broadcast to room %s failed: %v", code, err)
	}
}
