package storage

import "time"

// CandidateProcessedMessage 候选人处理完成事件
// 下游（通知、HR看板同步）按事件中的记录UUID回查归档行
type CandidateProcessedMessage struct {
	EventID       string    `json:"event_id"`                 // 事件UUID
	RecordUUID    string    `json:"record_uuid,omitempty"`    // 归档行UUID，未持久化时为空
	CandidateName string    `json:"candidate_name"`           // 候选人姓名
	Email         string    `json:"email,omitempty"`          // 候选人邮箱
	Status        string    `json:"status"`                   // 管道终态 success/error
	CVLocator     string    `json:"cv_locator,omitempty"`     // CV文档定位符
	DICELocator   string    `json:"dice_locator,omitempty"`   // DICE文档定位符
	SummaryNotes  string    `json:"summary_notes,omitempty"`  // 面试总结
	ProcessedAt   time.Time `json:"processed_at"`             // 处理完成时间
	Source        string    `json:"source"`                   // 事件来源服务名
}
