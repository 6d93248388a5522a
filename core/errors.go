package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），也支持 errors.Is / errors.As
//
// 使用场景：
//   - Index 错误：NOT_FOUND（原始 ID 未编码、编码下标越界）
//   - Dataset 错误：UNAVAILABLE（启动时 embedding / 评分表加载失败）
//   - Rank 错误：INVALID_INPUT（权重、TopN 等参数非法）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "index", "dataset", "store"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is 按 Module + Code 比较，target 的 Module 为空时只比较 Code，
// 使 errors.Is(err, ErrNotFound) 对任意模块的 NOT_FOUND 成立。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Module == "" || e.Module == t.Module)
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的第一个 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建带底层错误的领域错误
func WrapDomainError(module, code string, err error, format string, args ...any) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 原始 ID / 编码下标不存在
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 数据不可用（DataUnavailable）
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleIndex   = "index"   // 向量索引模块
	ModuleDataset = "dataset" // 评分表 / 元数据模块
	ModuleRank    = "rank"    // 混合排序模块
	ModuleCache   = "cache"   // 结果缓存模块
	ModuleFilter  = "filter"  // 候选过滤模块
)

// 常用错误（用于 errors.Is 比较，仅比较 Code）
var (
	// ErrNotFound 原始 ID 不在编码表中、编码下标越界或元数据缺失
	ErrNotFound = NewDomainError("", ErrorCodeNotFound, "not found")

	// ErrDataUnavailable embedding 或评分表无法加载
	ErrDataUnavailable = NewDomainError("", ErrorCodeUnavailable, "data unavailable")

	// ErrInvalidInput 参数非法
	ErrInvalidInput = NewDomainError("", ErrorCodeInvalidInput, "invalid input")
)

// 通用错误检查函数

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
