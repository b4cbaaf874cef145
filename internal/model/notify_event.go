package model

// NotifyEvent is a persisted console notification, kept so reconnecting
// clients can catch up incrementally by id.
type NotifyEvent struct {
	BaseModel
	Topic     string `gorm:"type:varchar(32);index:idx_notify_topic;not null" json:"topic"`
	EventType string `gorm:"type:varchar(32);not null" json:"event_type"`
	Payload   string `gorm:"type:text" json:"payload"`
}

// TableName specifies the table name for NotifyEvent model
func (NotifyEvent) TableName() string {
	return "notify_events"
}
