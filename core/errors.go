package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - Artifact 错误：ARTIFACT_LOAD_FAILED（产物缺失/损坏，仅影响对应策略）
//   - Store 错误：NOT_FOUND
//   - Service 错误：NOT_FOUND（未知策略）、INVALID_INPUT
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "ARTIFACT_LOAD_FAILED"）
	Message string // 错误消息
	Module  string // 模块名称（如 "artifact", "store", "service"）
	Err     error  // 底层错误，可为 nil
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message}
}

// WrapDomainError 创建携带底层错误的领域错误。
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message, Err: err}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound           = "NOT_FOUND"            // 资源不存在（未知策略等）
	ErrorCodeArtifactLoadFailed = "ARTIFACT_LOAD_FAILED" // 产物缺失或损坏
	ErrorCodeInvalidInput       = "INVALID_INPUT"        // 输入无效
	ErrorCodeNotSupported       = "NOT_SUPPORTED"        // 操作不支持
	ErrorCodeInternalError      = "INTERNAL_ERROR"       // 内部错误
)

// 模块名称常量
const (
	ModuleArtifact = "artifact" // 产物装载模块
	ModuleStore    = "store"    // 存储模块
	ModuleService  = "service"  // 服务模块
	ModuleConfig   = "config"   // 配置模块
)

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsArtifactLoadFailed 检查错误是否为产物装载失败。
// 该错误只表示单个策略不可用，调用方不应据此认为其他策略也失效。
func IsArtifactLoadFailed(err error) bool { return hasCode(err, ErrorCodeArtifactLoadFailed) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT。
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }
