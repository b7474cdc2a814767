// services/record_service.go
package services

import (
	"time"

	"github.com/wfunc/guessdex/logger"
	"github.com/wfunc/guessdex/persistence"
)

// RecordService archives finished rounds and answers stats queries. It
// satisfies the game engine's Recorder interface.
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// SaveRound archives one resolved round. Failures are logged, never
// propagated: the archive is best-effort and must not disturb room state.
func (s *RecordService) SaveRound(code, winner, targetName string, guessCount int, duration time.Duration) {
	record := &persistence.RoundRecord{
		RoomCode:   code,
		Winner:     winner,
		TargetName: targetName,
		GuessCount: guessCount,
		Duration:   duration,
	}
	if err := s.db.SaveRoundRecord(record); err != nil {
		logger.Log.Errorf("Failed to save round record for room %s: %v", code, err)
	}
}

func (s *RecordService) RecentRounds(limit int) ([]persistence.RoundRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.db.RecentRounds(limit)
}

func (s *RecordService) TopWinners(limit int) ([]persistence.WinnerCount, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.db.TopWinners(limit)
}
