package room

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/wfunc/guessdex/dex"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	registry := NewRegistry(6)

	room := registry.Create("alice")
	if room == nil {
		t.Fatal("Create should not return nil")
	}
	if len(room.Code) != 6 {
		t.Errorf("Expected 6-char code, got %q", room.Code)
	}
	for _, c := range room.Code {
		if !strings.ContainsRune(codeAlphabet, c) {
			t.Errorf("Code %q contains character outside the alphabet", room.Code)
		}
	}

	retrieved, exists := registry.Get(room.Code)
	if !exists {
		t.Fatal("Get should find the created room")
	}
	if retrieved != room {
		t.Error("Get should return the same room instance")
	}

	if !room.HasMember("alice") {
		t.Error("Creator should be the sole member")
	}
	if room.MemberCount() != 1 {
		t.Errorf("Expected member count 1, got %d", room.MemberCount())
	}
}

func TestRegistry_CodesUniqueAmongLiveRooms(t *testing.T) {
	registry := NewRegistry(4)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		room := registry.Create("creator")
		if seen[room.Code] {
			t.Fatalf("Code %q issued twice among live rooms", room.Code)
		}
		seen[room.Code] = true
	}
}

func TestRoom_AddMember_NoDuplicates(t *testing.T) {
	room := NewRoom("TEST01")

	if !room.AddMember("alice") {
		t.Fatal("First add should succeed")
	}
	if room.AddMember("alice") {
		t.Fatal("Re-adding the same connection must be a no-op")
	}
	room.AddMember("bob")

	members := room.Members()
	if len(members) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(members))
	}
	if members[0].ID != "alice" || members[1].ID != "bob" {
		t.Errorf("Members must keep join order, got %+v", members)
	}
}

func TestRegistry_LeaveDestroysEmptyRoom(t *testing.T) {
	registry := NewRegistry(6)
	room := registry.Create("alice")
	room.AddMember("bob")

	_, removed, destroyed := registry.Leave(room.Code, "bob")
	if !removed || destroyed {
		t.Fatalf("Expected removed without destruction, got removed=%v destroyed=%v", removed, destroyed)
	}

	_, removed, destroyed = registry.Leave(room.Code, "alice")
	if !removed || !destroyed {
		t.Fatalf("Last leave should destroy the room, got removed=%v destroyed=%v", removed, destroyed)
	}

	if _, exists := registry.Get(room.Code); exists {
		t.Error("Destroyed room's code must be unresolvable")
	}
}

func TestRegistry_RemoveEverywhere(t *testing.T) {
	registry := NewRegistry(6)
	roomA := registry.Create("alice")
	roomA.AddMember("bob")
	roomB := registry.Create("bob")

	// Zero-room case is a no-op.
	if deps := registry.RemoveEverywhere("stranger"); len(deps) != 0 {
		t.Fatalf("Expected no departures for an unknown session, got %d", len(deps))
	}

	deps := registry.RemoveEverywhere("bob")
	if len(deps) != 2 {
		t.Fatalf("Expected 2 departures, got %d", len(deps))
	}

	if _, exists := registry.Get(roomB.Code); exists {
		t.Error("Room emptied by disconnect must be destroyed")
	}
	if roomA.HasMember("bob") {
		t.Error("Disconnected session must be removed from every room")
	}

	// Idempotent on repeat.
	if deps := registry.RemoveEverywhere("bob"); len(deps) != 0 {
		t.Fatalf("Second RemoveEverywhere should find nothing, got %d", len(deps))
	}
}

func TestRoom_SetReadyAndBarrier(t *testing.T) {
	room := NewRoom("TEST02")
	room.AddMember("alice")
	room.AddMember("bob")

	if room.SetReady("stranger", true) {
		t.Error("SetReady for a non-member must be a no-op")
	}
	if room.AllReady() {
		t.Error("Nobody is ready yet")
	}

	room.SetReady("alice", true)
	if room.StartRoundIfReady(7) {
		t.Fatal("Round must not start before every member is ready")
	}

	room.SetReady("bob", true)
	if !room.StartRoundIfReady(7) {
		t.Fatal("Round should start when every member is ready")
	}
	if !room.RoundActive() || room.TargetID() != 7 {
		t.Errorf("Expected active round with target 7, got active=%v target=%d",
			room.RoundActive(), room.TargetID())
	}

	// The barrier cannot fire again while the round runs.
	if room.StartRoundIfReady(8) {
		t.Fatal("A second round must not start while one is active")
	}
	if room.TargetID() != 7 {
		t.Error("Active round's target must not change")
	}
}

func TestRoom_ApplyGuess_ResolvesAndResets(t *testing.T) {
	room := NewRoom("TEST03")
	room.AddMember("alice")
	room.AddMember("bob")
	room.SetReady("alice", true)
	room.SetReady("bob", true)
	room.StartRoundIfReady(7)

	card := &dex.Card{ID: 7, Name: "squirtle"}
	room.SetTargetIfUnset(7, card)

	wrong := GuessRecord{SessionID: "bob", Card: &dex.Card{Name: "pidgey"}}
	outcome, applied := room.ApplyGuess(wrong, 7, 0)
	if !applied {
		t.Fatal("Guess against the live round should apply")
	}
	if outcome.RoundOver {
		t.Fatal("Wrong guess without a cap must not end the round")
	}
	if len(room.Guesses()) != 1 {
		t.Fatalf("Expected 1 guess in history, got %d", len(room.Guesses()))
	}

	correct := GuessRecord{SessionID: "alice", Card: card, Correct: true}
	outcome, applied = room.ApplyGuess(correct, 7, 0)
	if !applied || !outcome.RoundOver {
		t.Fatalf("Correct guess should resolve the round, got applied=%v over=%v", applied, outcome.RoundOver)
	}
	if outcome.Winner != "alice" {
		t.Errorf("Expected winner alice, got %q", outcome.Winner)
	}
	if outcome.GuessCount != 2 {
		t.Errorf("Expected 2 guesses this round, got %d", outcome.GuessCount)
	}

	if room.RoundActive() {
		t.Error("Room should be back in the lobby")
	}
	if room.TargetID() != 0 || room.Target() != nil || len(room.Guesses()) != 0 {
		t.Error("Round end must clear target and history")
	}
	for _, m := range room.Members() {
		if m.Ready {
			t.Errorf("Member %s must be reset to not-ready at round end", m.ID)
		}
	}
}

func TestRoom_ApplyGuess_StaleRoundRejected(t *testing.T) {
	room := NewRoom("TEST04")
	room.AddMember("alice")
	room.SetReady("alice", true)
	room.StartRoundIfReady(7)
	room.SetTargetIfUnset(7, &dex.Card{ID: 7, Name: "squirtle"})

	// No active round at all.
	winning := GuessRecord{SessionID: "alice", Correct: true}
	if _, applied := room.ApplyGuess(winning, 7, 0); !applied {
		t.Fatal("Guess should apply to the live round")
	}
	if _, applied := room.ApplyGuess(winning, 7, 0); applied {
		t.Fatal("Guess must be rejected once the round is resolved")
	}

	// A guess prepared against a previous round must not leak into a
	// new one.
	room.SetReady("alice", true)
	room.StartRoundIfReady(9)
	if _, applied := room.ApplyGuess(winning, 7, 0); applied {
		t.Fatal("Guess carrying a stale target id must be rejected")
	}
}

func TestRoom_ApplyGuess_Cap(t *testing.T) {
	room := NewRoom("TEST05")
	room.AddMember("alice")
	room.SetReady("alice", true)
	room.StartRoundIfReady(7)
	room.SetTargetIfUnset(7, &dex.Card{ID: 7, Name: "squirtle"})

	wrong := GuessRecord{SessionID: "alice", Card: &dex.Card{Name: "pidgey"}}
	outcome, _ := room.ApplyGuess(wrong, 7, 2)
	if outcome.RoundOver {
		t.Fatal("First wrong guess is under the cap")
	}
	outcome, _ = room.ApplyGuess(wrong, 7, 2)
	if !outcome.RoundOver {
		t.Fatal("Cap reached, round must close")
	}
	if outcome.Winner != "" {
		t.Errorf("Exhausted round has no winner, got %q", outcome.Winner)
	}
}

func TestRoom_SetTargetIfUnset_LoadOnce(t *testing.T) {
	room := NewRoom("TEST06")
	room.AddMember("alice")
	room.SetReady("alice", true)
	room.StartRoundIfReady(7)

	first := &dex.Card{ID: 7, Name: "squirtle"}
	second := &dex.Card{ID: 7, Name: "squirtle-duplicate"}

	if !room.SetTargetIfUnset(7, first) {
		t.Fatal("First load should install the target")
	}
	if room.SetTargetIfUnset(7, second) {
		t.Fatal("Second concurrent load must be discarded")
	}
	if room.Target() != first {
		t.Error("Installed target must be the first completed load")
	}

	if room.SetTargetIfUnset(8, &dex.Card{ID: 8}) {
		t.Error("A load for a different round must be discarded")
	}
}

// Membership invariant under a randomized join/leave sequence: no room ever
// holds a duplicate connection id and emptied rooms are always destroyed.
func TestRegistry_RandomizedJoinLeave(t *testing.T) {
	registry := NewRegistry(6)
	rng := rand.New(rand.NewSource(1))
	sessions := []string{"s1", "s2", "s3", "s4", "s5"}

	var codes []string
	for i := 0; i < 500; i++ {
		sid := sessions[rng.Intn(len(sessions))]
		switch rng.Intn(4) {
		case 0:
			codes = append(codes, registry.Create(sid).Code)
		case 1:
			if len(codes) > 0 {
				if r, ok := registry.Get(codes[rng.Intn(len(codes))]); ok {
					r.AddMember(sid)
				}
			}
		case 2:
			if len(codes) > 0 {
				registry.Leave(codes[rng.Intn(len(codes))], sid)
			}
		case 3:
			registry.RemoveEverywhere(sid)
		}

		for _, r := range registry.Rooms() {
			if r.MemberCount() == 0 {
				t.Fatalf("Empty room %s still registered", r.Code)
			}
			seen := make(map[string]bool)
			for _, m := range r.Members() {
				if seen[m.ID] {
					t.Fatalf("Room %s holds duplicate member %s", r.Code, m.ID)
				}
				seen[m.ID] = true
			}
		}
	}
}
