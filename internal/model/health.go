package model

// HealthReport 存储健康检查结果
type HealthReport struct {
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	IsHealthy   bool     `json:"isHealthy"`
}

// StorageInfo 存储用量
type StorageInfo struct {
	Keys        []string `json:"keys"`
	CurrentSize int64    `json:"currentSize"` // 字节
	LimitSize   int64    `json:"limitSize"`   // 字节
	UsageRatio  float64  `json:"usageRatio"`
}
