package agents

import (
	"context"
	"strings"

	logcontext "github.com/va6996/ecochat/context"
	"github.com/va6996/ecochat/orm"
	"gorm.io/gorm"
)

// DBRecorder stores chat exchanges with gorm.
type DBRecorder struct {
	db *gorm.DB
}

var _ ChatRecorder = (*DBRecorder)(nil)

// NewDBRecorder returns nil when db is nil so callers can pass the result
// straight to NewChatService.
func NewDBRecorder(db *gorm.DB) ChatRecorder {
	if db == nil {
		return nil
	}
	return &DBRecorder{db: db}
}

// RecordChat implements ChatRecorder.
func (r *DBRecorder) RecordChat(ctx context.Context, message string, answer *Answer) error {
	return orm.CreateChatExchange(r.db.WithContext(ctx), &orm.ChatExchange{
		RequestID: logcontext.RequestIDFromContext(ctx),
		Message:   message,
		Response:  answer.Text,
		Source:    string(answer.Source),
		Tools:     strings.Join(answer.Tools, ","),
	})
}
