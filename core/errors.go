package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误语义（与各组件契约对应）：
//   - INSUFFICIENT_DATA：仅由协同过滤训练在矩阵为空/过稀时产生；
//     调用方将其降级为“协同信号不可用”，绝不透传给 API 调用者
//   - 未知 userID/courseId 不是错误：各组件返回空结果或零向量
//   - INVALID_INPUT（k<=0、权重不合法等）：在引擎边界同步拦截，核心假定输入已校验
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INSUFFICIENT_DATA"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "model", "engine"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"          // 资源不存在
	ErrorCodeNotSupported     = "NOT_SUPPORTED"      // 操作不支持
	ErrorCodeInvalidInput     = "INVALID_INPUT"      // 输入无效
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA"  // 训练数据不足
)

// 模块名称常量
const (
	ModuleStore  = "store"  // 存储模块
	ModuleModel  = "model"  // 训练/模型模块
	ModuleIndex  = "index"  // 内容索引模块
	ModuleEngine = "engine" // 引擎边界
)

// 常用错误实例
var (
	// ErrInsufficientData 表示交互矩阵为空或低于最小密度，无法训练。
	ErrInsufficientData = NewDomainError(ModuleModel, ErrorCodeInsufficientData, "model: interaction matrix is empty or too sparse to train")

	// ErrStoreNotFound 表示 key 不存在。
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStoreNotSupported 表示操作不支持。
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// hasCode 检查错误是否为指定代码的 DomainError。
func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsInsufficientData 检查错误是否为训练数据不足。
func IsInsufficientData(err error) bool {
	return hasCode(err, ErrorCodeInsufficientData)
}

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT。
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}
