package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind 错误分类，在出错位置确定，不依赖错误文本匹配
type Kind string

const (
	KindStorage    Kind = "storage_error"
	KindNetwork    Kind = "network_error"
	KindFile       Kind = "file_error"
	KindValidation Kind = "validation_error"
	KindSystem     Kind = "system_error"
	KindUser       Kind = "user_error"
)

// Severity 决定提示方式：low/medium 轻提示，high/critical 弹窗
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IsBlocking 是否需要弹窗提示
func (s Severity) IsBlocking() bool {
	return s == SeverityHigh || s == SeverityCritical
}

var defaultUserMessages = map[Kind]string{
	KindStorage:    "存储操作失败，请稍后重试",
	KindNetwork:    "网络连接异常，请检查网络设置",
	KindFile:       "文件操作失败，请检查文件权限",
	KindValidation: "输入的数据格式不正确",
	KindSystem:     "系统异常，请稍后重试",
	KindUser:       "当前操作无法完成",
}

// AppError 带分类和严重程度的错误
type AppError struct {
	Kind        Kind
	Severity    Severity
	Context     string // 出错的操作，例如 "store.SafeSet"
	UserMessage string
	Err         error

	handled bool
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Context, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Context, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithSeverity 覆盖默认严重程度
func (e *AppError) WithSeverity(s Severity) *AppError {
	e.Severity = s
	return e
}

// WithUserMessage 覆盖默认用户提示
func (e *AppError) WithUserMessage(msg string) *AppError {
	e.UserMessage = msg
	return e
}

// MarkHandled 标记已交给错误处理器，外层不再重复记录
func (e *AppError) MarkHandled() *AppError {
	e.handled = true
	return e
}

func newAppError(kind Kind, severity Severity, context string, err error) *AppError {
	return &AppError{
		Kind:        kind,
		Severity:    severity,
		Context:     context,
		UserMessage: defaultUserMessages[kind],
		Err:         err,
	}
}

func Storage(context string, err error) *AppError {
	return newAppError(KindStorage, SeverityMedium, context, err)
}

func Network(context string, err error) *AppError {
	return newAppError(KindNetwork, SeverityMedium, context, err)
}

func File(context string, err error) *AppError {
	return newAppError(KindFile, SeverityMedium, context, err)
}

func Validation(context string, err error) *AppError {
	return newAppError(KindValidation, SeverityLow, context, err)
}

func System(context string, err error) *AppError {
	return newAppError(KindSystem, SeverityHigh, context, err)
}

func User(context string, err error) *AppError {
	return newAppError(KindUser, SeverityLow, context, err)
}

// KindOf 返回错误分类，未分类的错误按系统错误处理
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindSystem
}

// SeverityOf 返回错误严重程度
func SeverityOf(err error) Severity {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Severity != "" {
		return appErr.Severity
	}
	return SeverityMedium
}

// UserMessageOf 返回面向用户的提示
func UserMessageOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.UserMessage != "" {
		return appErr.UserMessage
	}
	return defaultUserMessages[KindSystem]
}

// IsHandled 错误链上是否有已处理过的 AppError
func IsHandled(err error) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.handled {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// DefinitionOf 取出错误链中的业务错误码
func DefinitionOf(err error) (Definition, bool) {
	var def Definition
	if stderrors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}
