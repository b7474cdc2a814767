// persistence/interface.go
package persistence

import (
	"fmt"
	"time"
)

// RoundRecord is one finished round. Live room state is never persisted;
// only resolved rounds are archived for stats.
type RoundRecord struct {
	ID         uint          `json:"id"`
	RoomCode   string        `json:"room_code"`
	Winner     string        `json:"winner"` // empty when the guess cap closed the round
	TargetName string        `json:"target_name"`
	GuessCount int           `json:"guess_count"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}

// WinnerCount is one entry of the winner leaderboard.
type WinnerCount struct {
	Winner string `json:"winner"`
	Wins   int    `json:"wins"`
}

// Database 数据库接口
type Database interface {
	SaveRoundRecord(record *RoundRecord) error
	RecentRounds(limit int) ([]RoundRecord, error)
	TopWinners(limit int) ([]WinnerCount, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
