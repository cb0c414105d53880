package model

import "time"

// ErrorLogEntry 错误日志环形缓冲区中的一条
type ErrorLogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Context     string    `json:"context"`
	Message     string    `json:"message"`
	UserMessage string    `json:"userMessage"`
	Severity    string    `json:"severity"`
}
