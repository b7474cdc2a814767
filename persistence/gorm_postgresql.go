// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// RoundRecordModel is the GORM mapping of RoundRecord.
type RoundRecordModel struct {
	ID         uint   `gorm:"primaryKey"`
	RoomCode   string `gorm:"index;not null"`
	Winner     string `gorm:"index"`
	TargetName string `gorm:"not null"`
	GuessCount int    `gorm:"not null"`
	DurationMs int64  `gorm:"not null"`
	CreatedAt  time.Time
}

func (RoundRecordModel) TableName() string {
	return "round_records"
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&RoundRecordModel{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveRoundRecord 保存对局记录
func (p *GormPostgreSQL) SaveRoundRecord(record *RoundRecord) error {
	model := RoundRecordModel{
		RoomCode:   record.RoomCode,
		Winner:     record.Winner,
		TargetName: record.TargetName,
		GuessCount: record.GuessCount,
		DurationMs: record.Duration.Milliseconds(),
	}
	if err := p.db.Create(&model).Error; err != nil {
		return err
	}
	record.ID = model.ID
	record.CreatedAt = model.CreatedAt
	return nil
}

// RecentRounds 查询最近的对局记录
func (p *GormPostgreSQL) RecentRounds(limit int) ([]RoundRecord, error) {
	var models []RoundRecordModel
	err := p.db.Order("created_at DESC").Limit(limit).Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]RoundRecord, 0, len(models))
	for _, m := range models {
		records = append(records, RoundRecord{
			ID:         m.ID,
			RoomCode:   m.RoomCode,
			Winner:     m.Winner,
			TargetName: m.TargetName,
			GuessCount: m.GuessCount,
			Duration:   time.Duration(m.DurationMs) * time.Millisecond,
			CreatedAt:  m.CreatedAt,
		})
	}
	return records, nil
}

// TopWinners 查询胜场排行
func (p *GormPostgreSQL) TopWinners(limit int) ([]WinnerCount, error) {
	var result []WinnerCount
	err := p.db.Model(&RoundRecordModel{}).
		Select("winner, COUNT(*) as wins").
		Where("winner <> ''").
		Group("winner").
		Order("wins DESC").
		Limit(limit).
		Scan(&result).Error
	return result, err
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
