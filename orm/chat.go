package orm

import (
	"time"

	"gorm.io/gorm"
)

// ChatExchange is one answered chat message.
type ChatExchange struct {
	ID        uint   `gorm:"primaryKey"`
	RequestID string `gorm:"size:64;index"`
	Message   string
	Response  string
	Source    string `gorm:"size:32;index"`
	Tools     string // comma separated tool names
	CreatedAt time.Time
}

// CreateChatExchange stores an exchange and writes back its ID.
func CreateChatExchange(db *gorm.DB, ex *ChatExchange) error {
	return db.Create(ex).Error
}

// RecentChatExchanges returns up to limit exchanges, newest first.
func RecentChatExchanges(db *gorm.DB, limit int) ([]ChatExchange, error) {
	var out []ChatExchange
	err := db.Order("created_at desc, id desc").Limit(limit).Find(&out).Error
	return out, err
}

// CountChatExchangesBySource groups the stored exchanges by answering source.
func CountChatExchangesBySource(db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Source string
		Total  int64
	}
	err := db.Model(&ChatExchange{}).Select("source, count(*) as total").Group("source").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Source] = r.Total
	}
	return out, nil
}
