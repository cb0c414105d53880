package model

// NoticeLevel 提示方式
type NoticeLevel string

const (
	NoticeToast NoticeLevel = "toast"
	NoticeModal NoticeLevel = "modal"
)

// Notice 面向用户的提示，HTTP 响应中放在 meta.notices
type Notice struct {
	Level       NoticeLevel `json:"level"`
	Title       string      `json:"title,omitempty"`
	Message     string      `json:"message"`
	Suggestions []string    `json:"suggestions,omitempty"`
}
