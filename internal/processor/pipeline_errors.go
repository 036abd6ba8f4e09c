package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrDocumentUnavailable  = errors.New("候选文档不可用")
	ErrTextExtractionFailed = errors.New("提取文档文本失败")
	ErrPersistFailed        = errors.New("候选人归档写入失败")
	ErrPublishFailed        = errors.New("发布处理完成事件失败")
)

// CandidateProcessError 包含详细错误信息的自定义错误
type CandidateProcessError struct {
	RecordUUID string
	Op         string
	BaseErr    error
	Detail     string
}

func (e *CandidateProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, UUID:%s): %s", e.BaseErr, e.Op, e.RecordUUID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, UUID:%s)", e.BaseErr, e.Op, e.RecordUUID)
}

func (e *CandidateProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *CandidateProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewDocumentError(uuid, detail string) error {
	return &CandidateProcessError{
		RecordUUID: uuid,
		Op:         "fetch_document",
		BaseErr:    ErrDocumentUnavailable,
		Detail:     detail,
	}
}

func NewExtractionError(uuid, detail string) error {
	return &CandidateProcessError{
		RecordUUID: uuid,
		Op:         "extract_text",
		BaseErr:    ErrTextExtractionFailed,
		Detail:     detail,
	}
}

func NewPersistError(uuid, detail string) error {
	return &CandidateProcessError{
		RecordUUID: uuid,
		Op:         "persist",
		BaseErr:    ErrPersistFailed,
		Detail:     detail,
	}
}

func NewPublishError(uuid, detail string) error {
	return &CandidateProcessError{
		RecordUUID: uuid,
		Op:         "publish",
		BaseErr:    ErrPublishFailed,
		Detail:     detail,
	}
}
