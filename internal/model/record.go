package model

// RecordState 打卡记录的三种状态
type RecordState int

const (
	StateEmpty     RecordState = iota // 无上下班时间
	StateClockedIn                    // 只有上班时间
	StateComplete                     // 上下班都有
	// StateIncomplete 只有下班时间，结构合法但不计入时长
	StateIncomplete
)

func (s RecordState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateClockedIn:
		return "clocked_in"
	case StateComplete:
		return "complete"
	case StateIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// AttendanceRecord 一天的打卡记录，date 在集合中唯一
type AttendanceRecord struct {
	Date string  `json:"date"`
	On   *string `json:"on,omitempty"`
	Off  *string `json:"off,omitempty"`
}

// State 按上下班时间是否存在判断状态
func (r AttendanceRecord) State() RecordState {
	switch {
	case r.On != nil && r.Off != nil:
		return StateComplete
	case r.On != nil:
		return StateClockedIn
	case r.Off != nil:
		return StateIncomplete
	default:
		return StateEmpty
	}
}

// IsComplete 上下班时间都存在
func (r AttendanceRecord) IsComplete() bool {
	return r.State() == StateComplete
}

// Clone 深拷贝，避免共享指针
func (r AttendanceRecord) Clone() AttendanceRecord {
	out := AttendanceRecord{Date: r.Date}
	if r.On != nil {
		out.On = StringPtr(*r.On)
	}
	if r.Off != nil {
		out.Off = StringPtr(*r.Off)
	}
	return out
}

func StringPtr(s string) *string {
	return &s
}

// CloneRecords 深拷贝记录列表，nil 返回空列表
func CloneRecords(records []AttendanceRecord) []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.Clone())
	}
	return out
}

// TodayStatus 今日打卡状态
type TodayStatus struct {
	Record          *AttendanceRecord `json:"record,omitempty"`
	Date            string            `json:"date"`
	State           string            `json:"state"`
	Duration        string            `json:"duration"` // HH:MM，上班中为当前已工作时长
	DurationMinutes int               `json:"durationMinutes"`
}
