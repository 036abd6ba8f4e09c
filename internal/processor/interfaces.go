package processor

import (
	"context"
	"time"

	"anu-agent-go/internal/storage"
	"anu-agent-go/internal/storage/models"
	"anu-agent-go/internal/types"
)

//
// 文档与AI阶段接口
//

// DocumentExtractor 候选人文档文本提取接口
type DocumentExtractor interface {
	// ExtractFromFile 从本地PDF文件提取文本
	ExtractFromFile(ctx context.Context, filePath string) (string, error)

	// ExtractTextFromBytes 从字节数组提取文本，uri仅用于日志与追踪
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, error)
}

// ProfileExtractor 候选人画像提取接口，失败时返回规范空画像而不是错误
type ProfileExtractor interface {
	ExtractProfile(ctx context.Context, cvText string, diceText string) *types.CandidateProfile
}

// InterviewGenerator 面试合成接口，失败时返回规范降级记录而不是错误
type InterviewGenerator interface {
	GenerateInterview(ctx context.Context, profile *types.CandidateProfile) *types.InterviewRecord
}

//
// 存储旁路接口，全部非致命
//

// CandidateSink 候选人归档写入接口
type CandidateSink interface {
	SaveCandidateRecord(ctx context.Context, record *models.CandidateRecord) error
}

// ResultCache 管道结果缓存接口
type ResultCache interface {
	CachePipelineResult(ctx context.Context, email string, result *types.PipelineResult, ttl time.Duration) error
}

// EventPublisher 处理完成事件发布接口
type EventPublisher interface {
	PublishCandidateProcessed(ctx context.Context, msg *storage.CandidateProcessedMessage) error
}

// DocumentFetcher 对象存储文档取回接口
type DocumentFetcher interface {
	DownloadByLocator(ctx context.Context, locator string) ([]byte, error)
}
