package handler

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"anu-agent-go/internal/config"
	"anu-agent-go/internal/constants"
	"anu-agent-go/internal/logger"
	"anu-agent-go/internal/processor"
	storage2 "anu-agent-go/internal/storage"
	"anu-agent-go/internal/storage/models"
	"anu-agent-go/internal/types"
	"anu-agent-go/pkg/utils"

	"github.com/gofrs/uuid/v5"
)

// CandidateHandler 候选人处理器，负责协调文档上传与管道执行
type CandidateHandler struct {
	cfg             *config.Config
	storage         *storage2.Storage
	processorModule *processor.CandidateProcessor
}

// NewCandidateHandler 创建一个新的候选人处理器
func NewCandidateHandler(
	cfg *config.Config,
	storage *storage2.Storage,
	processorModule *processor.CandidateProcessor,
) *CandidateHandler {
	return &CandidateHandler{
		cfg:             cfg,
		storage:         storage,
		processorModule: processorModule,
	}
}

// DocumentUploadResponse 文档上传响应
type DocumentUploadResponse struct {
	SubmissionUUID string `json:"submission_uuid"`
	CVLocator      string `json:"cv_locator,omitempty"`
	DICELocator    string `json:"dice_locator,omitempty"`
	Status         string `json:"status"`
}

// ProcessCandidateRequest 管道执行请求体。
// cv_url/dice_url 接受本地路径或 minio:// 定位符。
type ProcessCandidateRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	CVLocator   string `json:"cv_url"`
	DICELocator string `json:"dice_url"`
	Persist     *bool  `json:"persist,omitempty"`
}

// documentStore 是文档上传所需的最小MinIO操作面。
type documentStore interface {
	UploadDocument(ctx context.Context, kind, objectName string, data []byte, contentType string) (string, error)
	DeleteByLocator(ctx context.Context, locator string) error
}

// fileDeduper 是文件MD5去重所需的最小Redis操作面。
type fileDeduper interface {
	CheckAndAddFileMD5(ctx context.Context, md5Hex string) (bool, error)
	RemoveFileMD5(ctx context.Context, md5Hex string) error
}

// HandleDocumentUpload 处理候选人CV与DICE文档的成对上传。
// 两份文件的MD5都已在Redis去重集合中时跳过上传，不触发后续处理。
func (h *CandidateHandler) HandleDocumentUpload(ctx context.Context,
	cvReader io.Reader, cvFilename string,
	diceReader io.Reader, diceFilename string) (*DocumentUploadResponse, error) {

	if h.storage == nil || h.storage.MinIO == nil {
		return nil, fmt.Errorf("MinIO存储未初始化")
	}
	var dedup fileDeduper
	if h.storage.Redis != nil {
		dedup = h.storage.Redis
	}
	return h.uploadPair(ctx, h.storage.MinIO, dedup, cvReader, cvFilename, diceReader, diceFilename)
}

func (h *CandidateHandler) uploadPair(ctx context.Context, store documentStore, dedup fileDeduper,
	cvReader io.Reader, cvFilename string,
	diceReader io.Reader, diceFilename string) (*DocumentUploadResponse, error) {

	// 0. 读取文件内容并计算文件本身的MD5 (需要在上传MinIO前，且reader只能读一次)
	cvBytes, err := io.ReadAll(cvReader)
	if err != nil {
		return nil, fmt.Errorf("读取CV文件内容失败: %w", err)
	}
	diceBytes, err := io.ReadAll(diceReader)
	if err != nil {
		return nil, fmt.Errorf("读取DICE文件内容失败: %w", err)
	}

	cvMD5 := utils.CalculateMD5(cvBytes)
	diceMD5 := utils.CalculateMD5(diceBytes)
	cvDuplicate, cvRegistered := checkAndMarkMD5(ctx, dedup, cvMD5, cvFilename)
	diceDuplicate, diceRegistered := checkAndMarkMD5(ctx, dedup, diceMD5, diceFilename)

	// 只回滚本次新登记的MD5，已存在的记录不归本次提交所有
	var registeredMD5s []string
	if cvRegistered {
		registeredMD5s = append(registeredMD5s, cvMD5)
	}
	if diceRegistered {
		registeredMD5s = append(registeredMD5s, diceMD5)
	}

	if cvDuplicate && diceDuplicate {
		logger.Info().
			Str("cv_filename", cvFilename).
			Str("dice_filename", diceFilename).
			Msg("检测到重复的文件MD5，跳过处理")
		return &DocumentUploadResponse{
			Status: "DUPLICATE_FILE_SKIPPED",
		}, nil
	}

	// 1. 生成UUIDv7作为提交标识
	uuidV7, err := uuid.NewV7()
	if err != nil {
		rollbackUpload(ctx, store, dedup, registeredMD5s, "")
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	submissionUUID := uuidV7.String()

	// 2. 上传原始文件到MinIO，失败时回滚去重登记与已上传对象，保证同一对文件可重新提交
	cvLocator, err := uploadDocument(ctx, store, constants.DocumentKindCV, submissionUUID, cvFilename, cvBytes)
	if err != nil {
		rollbackUpload(ctx, store, dedup, registeredMD5s, "")
		return nil, fmt.Errorf("上传CV到MinIO失败: %w", err)
	}
	diceLocator, err := uploadDocument(ctx, store, constants.DocumentKindDICE, submissionUUID, diceFilename, diceBytes)
	if err != nil {
		rollbackUpload(ctx, store, dedup, registeredMD5s, cvLocator)
		return nil, fmt.Errorf("上传DICE到MinIO失败: %w", err)
	}

	return &DocumentUploadResponse{
		SubmissionUUID: submissionUUID,
		CVLocator:      cvLocator,
		DICELocator:    diceLocator,
		Status:         "UPLOADED",
	}, nil
}

// checkAndMarkMD5 检查并登记文件MD5，返回是否重复、本次是否新登记。
// Redis查询失败时放行，去重退化为尽力而为。
func checkAndMarkMD5(ctx context.Context, dedup fileDeduper, md5Hex, filename string) (duplicate, registered bool) {
	if dedup == nil {
		return false, false
	}

	exists, err := dedup.CheckAndAddFileMD5(ctx, md5Hex)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("md5", md5Hex).
			Str("filename", filename).
			Msg("查询Redis文件MD5 Set失败，将继续处理，但文件去重可能失效")
		return false, false
	}
	return exists, !exists
}

// rollbackUpload 清理上传中途失败留下的痕迹：移除本次登记的MD5并删除已上传的对象。
func rollbackUpload(ctx context.Context, store documentStore, dedup fileDeduper, md5s []string, uploadedLocator string) {
	for _, md5Hex := range md5s {
		if err := dedup.RemoveFileMD5(ctx, md5Hex); err != nil {
			logger.Warn().Err(err).Str("md5", md5Hex).Msg("回滚Redis文件MD5登记失败")
		}
	}
	if uploadedLocator != "" {
		if err := store.DeleteByLocator(ctx, uploadedLocator); err != nil {
			logger.Warn().Err(err).Str("locator", uploadedLocator).Msg("删除已上传的MinIO对象失败")
		}
	}
}

func uploadDocument(ctx context.Context, store documentStore, kind, submissionUUID, filename string, data []byte) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".pdf"
	}
	objectName := fmt.Sprintf("%s/%s%s", submissionUUID, kind, ext)
	return store.UploadDocument(ctx, kind, objectName, data, "application/pdf")
}

// HandleProcessCandidate 运行完整的候选人管道并返回结果。
// 管道内部已对LLM失败做降级，返回的结果要么是success要么是带错误说明的error状态。
func (h *CandidateHandler) HandleProcessCandidate(ctx context.Context, req ProcessCandidateRequest) (*types.PipelineResult, error) {
	if h.processorModule == nil {
		return nil, fmt.Errorf("候选人处理器组件未初始化")
	}
	if req.CVLocator == "" || req.DICELocator == "" {
		return nil, fmt.Errorf("cv_url和dice_url不能为空")
	}

	start := time.Now()
	result := h.processorModule.ProcessCandidate(ctx, processor.ProcessRequest{
		Name:        req.Name,
		Email:       req.Email,
		CVLocator:   req.CVLocator,
		DICELocator: req.DICELocator,
		Persist:     req.Persist,
	})

	logger.Info().
		Str("name", req.Name).
		Str("status", string(result.Status)).
		Dur("elapsed", time.Since(start)).
		Msg("候选人管道执行完成")

	return result, nil
}

// HandleGetRecord 按UUID查询归档的候选人记录，未命中时错误原样透传给路由层判定
func (h *CandidateHandler) HandleGetRecord(ctx context.Context, recordUUID string) (*models.CandidateRecord, error) {
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, fmt.Errorf("MySQL存储未初始化")
	}
	return h.storage.MySQL.GetCandidateRecordByUUID(ctx, recordUUID)
}

// HandleListRecords 查询最近归档的候选人记录
func (h *CandidateHandler) HandleListRecords(ctx context.Context, limit int) ([]models.CandidateRecord, error) {
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, fmt.Errorf("MySQL存储未初始化")
	}
	return h.storage.MySQL.ListRecentCandidateRecords(ctx, limit)
}

// HandleGetCachedResult 按邮箱查询Redis中缓存的管道结果
func (h *CandidateHandler) HandleGetCachedResult(ctx context.Context, email string) (*types.PipelineResult, error) {
	if h.storage == nil || h.storage.Redis == nil {
		return nil, fmt.Errorf("Redis存储未初始化")
	}
	return h.storage.Redis.GetCachedPipelineResult(ctx, email)
}
