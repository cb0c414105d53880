package model

// 事件类型，作为 RabbitMQ routing key
const (
	EventClockIn        = "clock.in"
	EventClockOut       = "clock.out"
	EventRecordUpdated  = "record.updated"
	EventRecordDeleted  = "record.deleted"
	EventRecordsCleared = "records.cleared"
	EventRecordsImport  = "records.imported"
	EventCleanup        = "records.cleanup"
	EventBackupCreated  = "backup.created"
	EventBackupRestored = "backup.restored"
	EventHealthReport   = "storage.health"
	EventErrorLogged    = "error.logged"
	EventNotice         = "notice.raised"
)

// EventMessage 事件消息（用于事件总线）
type EventMessage struct {
	Payload    map[string]interface{} `json:"payload,omitempty"`
	EventID    string                 `json:"event_id"`
	EventType  string                 `json:"event_type"`
	DeviceID   string                 `json:"device_id,omitempty"`
	OccurredAt string                 `json:"occurred_at"`
}
