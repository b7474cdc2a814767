// persistence/memory.go
package persistence

import (
	"sort"
	"sync"
	"time"
)

// Memory keeps round records in process memory. It backs the
// database.enabled=false configuration so the server runs without
// Postgres; records are lost on restart.
type Memory struct {
	records []RoundRecord
	nextID  uint
	mutex   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

func (m *Memory) SaveRoundRecord(record *RoundRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	record.ID = m.nextID
	record.CreatedAt = time.Now()
	m.nextID++
	m.records = append(m.records, *record)
	return nil
}

func (m *Memory) RecentRounds(limit int) ([]RoundRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	n := len(m.records)
	if limit > n {
		limit = n
	}
	result := make([]RoundRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, m.records[i])
	}
	return result, nil
}

func (m *Memory) TopWinners(limit int) ([]WinnerCount, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	tally := make(map[string]int)
	for _, rec := range m.records {
		if rec.Winner != "" {
			tally[rec.Winner]++
		}
	}

	result := make([]WinnerCount, 0, len(tally))
	for winner, wins := range tally {
		result = append(result, WinnerCount{Winner: winner, Wins: wins})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Wins != result[j].Wins {
			return result[i].Wins > result[j].Wins
		}
		return result[i].Winner < result[j].Winner
	})
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *Memory) Close() error {
	return nil
}
