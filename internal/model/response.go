package model

// Meta 响应元数据，notices 为本次请求中产生的用户提示
type Meta struct {
	RequestID       string   `json:"request_id,omitempty"`
	CompatibleSince string   `json:"compatible_since,omitempty"`
	Notices         []Notice `json:"notices,omitempty"`
}

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// ErrorDetail 错误分类、严重程度等附加信息
type ErrorDetail map[string]interface{}

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details ErrorDetail `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
	Meta  Meta      `json:"meta,omitempty"`
}
