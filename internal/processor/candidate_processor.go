package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"anu-agent-go/internal/constants"
	"anu-agent-go/internal/parser"
	"anu-agent-go/internal/storage"
	"anu-agent-go/internal/storage/models"
	"anu-agent-go/internal/tracing"
	"anu-agent-go/internal/types"

	"github.com/gofrs/uuid/v5"
	guuid "github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("processor")

// Components 聚合管道的全部功能组件依赖，便于集中管理和测试替换
type Components struct {
	DocumentExtractor  DocumentExtractor  // PDF文本提取
	ProfileExtractor   ProfileExtractor   // 画像提取
	InterviewGenerator InterviewGenerator // 面试合成

	// 存储旁路，均允许为nil（对应组件未配置时整段跳过）
	Sink      CandidateSink   // MySQL归档
	Cache     ResultCache     // Redis结果缓存
	Publisher EventPublisher  // RabbitMQ事件
	Documents DocumentFetcher // MinIO文档取回
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	PersistByDefault bool        // 请求未显式指定时是否归档
	Debug            bool        // 是否开启调试模式
	Logger           *log.Logger // 日志记录器
}

// CandidateProcessor 候选人处理管道编排器
type CandidateProcessor struct {
	DocumentExtractor  DocumentExtractor
	ProfileExtractor   ProfileExtractor
	InterviewGenerator InterviewGenerator

	Sink      CandidateSink
	Cache     ResultCache
	Publisher EventPublisher
	Documents DocumentFetcher

	Settings Settings

	now func() time.Time
}

// NewCandidateProcessor 创建候选人处理管道
func NewCandidateProcessor(comp *Components, set *Settings) *CandidateProcessor {
	if set == nil {
		set = &Settings{}
	}
	if set.Logger == nil {
		set.Logger = log.New(os.Stdout, "[Processor] ", log.LstdFlags)
	}

	p := &CandidateProcessor{
		DocumentExtractor:  comp.DocumentExtractor,
		ProfileExtractor:   comp.ProfileExtractor,
		InterviewGenerator: comp.InterviewGenerator,
		Sink:               comp.Sink,
		Cache:              comp.Cache,
		Publisher:          comp.Publisher,
		Documents:          comp.Documents,
		Settings:           *set,
		now:                time.Now,
	}

	if p.Sink == nil {
		p.Settings.Logger.Println("警告: CandidateProcessor 的归档依赖未注入，结果将不会持久化。")
	}

	return p
}

// ProcessRequest 一次管道调用的输入
type ProcessRequest struct {
	// Name/Email 请求方提供的候选人信息，画像提取为空时作为归档兜底
	Name  string
	Email string

	// CVLocator/DICELocator 文档位置，支持本地路径和 minio:// 定位符
	CVLocator   string
	DICELocator string

	// Persist 为nil时使用PersistByDefault
	Persist *bool
}

// ProcessCandidate 运行完整的候选人处理管道。
// 文档文本提取失败是唯一的致命失败，返回带error状态的空壳结果；
// 画像与面试阶段永远产出结构完整的值；归档、缓存、事件均为非致命旁路。
// 该方法从不返回Go错误，调用方只看结果的Status字段。
func (p *CandidateProcessor) ProcessCandidate(ctx context.Context, req ProcessRequest) *types.PipelineResult {
	ctx, span := tracer.Start(ctx, "CandidateProcessor.ProcessCandidate")
	defer span.End()

	recordUUID := p.newRecordUUID()
	span.SetAttributes(attribute.String("candidate.record_uuid", recordUUID))

	p.Settings.Logger.Printf("Starting pipeline for candidate: %s (uuid=%s)", req.Name, recordUUID)

	// 阶段1: 文档文本提取，唯一的致命阶段
	cvText, err := p.extractDocumentText(ctx, req.CVLocator)
	if err == nil {
		var diceText string
		if diceText, err = p.extractDocumentText(ctx, req.DICELocator); err == nil {
			return p.runAIStages(ctx, req, recordUUID, cvText, diceText)
		}
	}

	errorType := tracing.ErrorTypeInternal
	if errors.Is(err, ErrDocumentUnavailable) {
		errorType = tracing.ErrorTypeObjectStorage
	}
	tracing.RecordError(span, err, errorType)
	p.Settings.Logger.Printf("Error in pipeline: %v", err)

	result := &types.PipelineResult{
		Profile:      types.EmptyCandidateProfile(),
		Interview:    emptyInterviewShell(),
		SummaryNotes: "",
		Memories:     []string{},
		Status:       types.StatusError,
		Error:        err.Error(),
	}
	p.publishEvent(ctx, req, recordUUID, result)
	return result
}

// runAIStages 文档文本就绪后的后半段管道：画像、校验、面试、旁路落地
func (p *CandidateProcessor) runAIStages(ctx context.Context, req ProcessRequest, recordUUID, cvText, diceText string) *types.PipelineResult {
	// 阶段2: 画像提取，内部降级，永不失败
	profile := p.ProfileExtractor.ExtractProfile(ctx, cvText, diceText)

	// 阶段3: 画像校验，只告警
	if missing, ok := ValidateProfile(profile); !ok {
		p.Settings.Logger.Printf("Profile validation failed - missing fields: %s", strings.Join(missing, ", "))
	}

	// 阶段4: 面试合成，内部降级，永不失败
	interview := p.InterviewGenerator.GenerateInterview(ctx, profile)

	if missing, ok := ValidateInterview(interview); !ok {
		p.Settings.Logger.Printf("Interview validation failed - missing fields: %s", strings.Join(missing, ", "))
	}

	result := &types.PipelineResult{
		Profile:      profile,
		Interview:    interview,
		SummaryNotes: interview.SummaryNotes,
		Memories:     interview.Memories,
		Status:       types.StatusSuccess,
	}

	// 阶段5: 归档，非致命
	if p.shouldPersist(req) {
		p.persistRecord(ctx, req, recordUUID, profile, interview)
	}

	// 阶段6: 结果缓存，非致命
	p.cacheResult(ctx, req, profile, result)

	// 阶段7: 处理完成事件，非致命
	p.publishEvent(ctx, req, recordUUID, result)

	p.Settings.Logger.Printf("Successfully processed documents for: %s", profile.Name)
	return result
}

// extractDocumentText 解析定位符并提取文档文本。
// minio://定位符先从对象存储取回字节，其余按本地文件路径处理。
func (p *CandidateProcessor) extractDocumentText(ctx context.Context, locator string) (string, error) {
	if locator == "" {
		return "", NewDocumentError("", "文档定位符为空")
	}

	if strings.HasPrefix(locator, constants.MinIOLocatorScheme) {
		if p.Documents == nil {
			return "", NewDocumentError("", fmt.Sprintf("对象存储未配置，无法取回 %s", locator))
		}
		data, err := p.Documents.DownloadByLocator(ctx, locator)
		if err != nil {
			return "", NewDocumentError("", err.Error())
		}
		text, err := p.DocumentExtractor.ExtractTextFromBytes(ctx, data, locator)
		if err != nil {
			return "", NewExtractionError("", err.Error())
		}
		return text, nil
	}

	text, err := p.DocumentExtractor.ExtractFromFile(ctx, locator)
	if err != nil {
		if errors.Is(err, parser.ErrDocumentNotFound) {
			return "", NewDocumentError("", err.Error())
		}
		return "", NewExtractionError("", err.Error())
	}
	if p.Settings.Debug {
		p.Settings.Logger.Printf("Extracted %d chars from %s: %s", len(text), locator, tracing.SafeDocumentContent(text))
	}
	return text, nil
}

func (p *CandidateProcessor) shouldPersist(req ProcessRequest) bool {
	if req.Persist != nil {
		return *req.Persist
	}
	return p.Settings.PersistByDefault
}

// persistRecord 把管道产物投影成扁平归档行并写入MySQL，失败只告警
func (p *CandidateProcessor) persistRecord(ctx context.Context, req ProcessRequest, recordUUID string, profile *types.CandidateProfile, interview *types.InterviewRecord) {
	if p.Sink == nil {
		p.Settings.Logger.Printf("⚠️ 归档未配置，跳过候选人 %s 的持久化", recordUUID)
		return
	}

	record := models.NewCandidateRecord(recordUUID, profile, interview, req.CVLocator, req.DICELocator)
	// 画像没提出姓名/邮箱时用请求方提供的值兜底
	if record.Name == "" {
		record.Name = req.Name
	}
	if record.Email == "" {
		record.Email = req.Email
	}

	if err := p.Sink.SaveCandidateRecord(ctx, record); err != nil {
		p.Settings.Logger.Printf("⚠️ %v", NewPersistError(recordUUID, err.Error()))
		return
	}
	p.Settings.Logger.Printf("✅ Candidate record %s persisted", recordUUID)
}

// cacheResult 按邮箱缓存最近一次结果，失败只告警
func (p *CandidateProcessor) cacheResult(ctx context.Context, req ProcessRequest, profile *types.CandidateProfile, result *types.PipelineResult) {
	if p.Cache == nil {
		return
	}

	email := profile.Email
	if email == "" {
		email = req.Email
	}
	if email == "" {
		return
	}

	if err := p.Cache.CachePipelineResult(ctx, email, result, constants.ResultCacheTTL); err != nil {
		p.Settings.Logger.Printf("⚠️ 缓存管道结果失败 (email=%s): %v", tracing.MaskPII(email), err)
	}
}

// publishEvent 发布处理完成事件，成功与失败的管道都发，失败只告警
func (p *CandidateProcessor) publishEvent(ctx context.Context, req ProcessRequest, recordUUID string, result *types.PipelineResult) {
	if p.Publisher == nil {
		return
	}

	name := req.Name
	email := req.Email
	if result.Profile != nil {
		if result.Profile.Name != "" {
			name = result.Profile.Name
		}
		if result.Profile.Email != "" {
			email = result.Profile.Email
		}
	}

	msg := &storage.CandidateProcessedMessage{
		EventID:       guuid.New().String(),
		RecordUUID:    recordUUID,
		CandidateName: name,
		Email:         email,
		Status:        string(result.Status),
		CVLocator:     req.CVLocator,
		DICELocator:   req.DICELocator,
		SummaryNotes:  result.SummaryNotes,
		ProcessedAt:   p.now(),
		Source:        constants.ServiceName,
	}

	if err := p.Publisher.PublishCandidateProcessed(ctx, msg); err != nil {
		p.Settings.Logger.Printf("⚠️ %v", NewPublishError(recordUUID, err.Error()))
	}
}

// newRecordUUID 生成时间有序的UUIDv7，生成失败时退回随机UUIDv4
func (p *CandidateProcessor) newRecordUUID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.Must(uuid.NewV4()).String()
}

// emptyInterviewShell 管道致命失败时返回的空面试结构，字段齐全但全部为空
func emptyInterviewShell() *types.InterviewRecord {
	return &types.InterviewRecord{
		ChatLog:  []types.ChatTurn{},
		Answers:  map[string]string{},
		Memories: []string{},
	}
}
