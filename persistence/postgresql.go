// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"
)

// PostgreSQL is the raw database/sql implementation of Database, selected
// with database.driver "sql".
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS round_records (
            id SERIAL PRIMARY KEY,
            room_code TEXT NOT NULL,
            winner TEXT NOT NULL DEFAULT '',
            target_name TEXT NOT NULL,
            guess_count INT NOT NULL,
            duration_ms BIGINT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_round_records_winner ON round_records (winner)`)
	return err
}

func (p *PostgreSQL) SaveRoundRecord(record *RoundRecord) error {
	row := p.db.QueryRow(`
        INSERT INTO round_records (room_code, winner, target_name, guess_count, duration_ms)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`,
		record.RoomCode, record.Winner, record.TargetName,
		record.GuessCount, record.Duration.Milliseconds())
	return row.Scan(&record.ID, &record.CreatedAt)
}

func (p *PostgreSQL) RecentRounds(limit int) ([]RoundRecord, error) {
	rows, err := p.db.Query(`
        SELECT id, room_code, winner, target_name, guess_count, duration_ms, created_at
        FROM round_records
        ORDER BY created_at DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RoundRecord
	for rows.Next() {
		var rec RoundRecord
		var durationMs int64
		if err := rows.Scan(&rec.ID, &rec.RoomCode, &rec.Winner, &rec.TargetName,
			&rec.GuessCount, &durationMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) TopWinners(limit int) ([]WinnerCount, error) {
	rows, err := p.db.Query(`
        SELECT winner, COUNT(*) AS wins
        FROM round_records
        WHERE winner <> ''
        GROUP BY winner
        ORDER BY wins DESC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WinnerCount
	for rows.Next() {
		var wc WinnerCount
		if err := rows.Scan(&wc.Winner, &wc.Wins); err != nil {
			return nil, err
		}
		result = append(result, wc)
	}
	return result, rows.Err()
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
