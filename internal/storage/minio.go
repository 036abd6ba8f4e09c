package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"anu-agent-go/internal/config"
	"anu-agent-go/internal/constants"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// MinIO 提供候选人文档的对象存储功能，CV与DICE测评分桶存放
type MinIO struct {
	client     *minio.Client
	cfg        *config.MinIOConfig
	cvBucket   string
	diceBucket string
	logger     *log.Logger
}

// NewMinIO 创建MinIO客户端
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[MinIO] Initializing MinIO client with endpoint: %s, cvBucket: %s, diceBucket: %s",
		cfg.Endpoint, cfg.CVBucket, cfg.DICEBucket)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Printf("[MinIO] Initialization failed: %v", err)
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	cvBucket := cfg.CVBucket
	if cvBucket == "" {
		cvBucket = "anu-cv-uploads"
	}
	diceBucket := cfg.DICEBucket
	if diceBucket == "" {
		diceBucket = "anu-dice-uploads"
	}

	m := &MinIO{
		client:     client,
		cfg:        cfg,
		cvBucket:   cvBucket,
		diceBucket: diceBucket,
		logger:     logger,
	}

	if err := m.ensureBucketExists(cvBucket, cfg.Location); err != nil {
		logger.Printf("[MinIO] Failed to ensure CV bucket %s exists: %v", cvBucket, err)
		return nil, fmt.Errorf("确保CV存储桶 %s 存在失败: %w", cvBucket, err)
	}
	if err := m.ensureBucketExists(diceBucket, cfg.Location); err != nil {
		logger.Printf("[MinIO] Failed to ensure DICE bucket %s exists: %v", diceBucket, err)
		return nil, fmt.Errorf("确保DICE存储桶 %s 存在失败: %w", diceBucket, err)
	}

	if cfg.UploadExpireDays > 0 {
		if err := m.setupLifecycleRules(context.Background()); err != nil {
			logger.Printf("[MinIO] Warning: Failed to set up lifecycle rules: %v", err)
		}
	}

	logger.Printf("[MinIO] Client initialized successfully for endpoint: %s", cfg.Endpoint)
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		m.logger.Printf("[MinIO] Bucket %s does not exist, attempting to create...", bucketName)
		err = m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.logger.Printf("[MinIO] Bucket %s created successfully.", bucketName)
	}
	return nil
}

// setupLifecycleRules 为两个文档桶设置过期清理规则
func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	for _, bucket := range []string{m.cvBucket, m.diceBucket} {
		if err := m.setupBucketLifecycle(ctx, bucket, "expire-uploads", m.cfg.UploadExpireDays); err != nil {
			return fmt.Errorf("为存储桶 %s 设置生命周期失败: %w", bucket, err)
		}
	}
	return nil
}

func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	lcConfig := lifecycle.NewConfiguration()
	lcConfig.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}

	if err := m.client.SetBucketLifecycle(ctx, bucketName, lcConfig); err != nil {
		m.logger.Printf("[MinIO] Error setting lifecycle for bucket %s: %v", bucketName, err)
		return err
	}
	m.logger.Printf("[MinIO] Successfully set lifecycle for bucket %s (ExpiryDays=%d).", bucketName, expiryDays)
	return nil
}

// bucketForKind 按文档类型返回目标存储桶
func (m *MinIO) bucketForKind(kind string) (string, error) {
	switch kind {
	case constants.DocumentKindCV:
		return m.cvBucket, nil
	case constants.DocumentKindDICE:
		return m.diceBucket, nil
	default:
		return "", fmt.Errorf("未知的文档类型: %s", kind)
	}
}

// UploadDocument 上传候选人文档并返回minio://定位符，管道后续按定位符取回
func (m *MinIO) UploadDocument(ctx context.Context, kind string, objectName string, data []byte, contentType string) (string, error) {
	bucket, err := m.bucketForKind(kind)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/pdf"
	}

	m.logger.Printf("[MinIO] Uploading document: Kind=%s, ObjectName=%s, Size=%d", kind, objectName, len(data))

	_, err = m.client.PutObject(ctx, bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("上传文档 %s/%s 失败: %w", bucket, objectName, err)
	}

	return constants.MinIOLocatorScheme + bucket + "/" + objectName, nil
}

// ParseLocator 解析minio://bucket/key形式的定位符
func ParseLocator(locator string) (bucket string, objectName string, err error) {
	if !strings.HasPrefix(locator, constants.MinIOLocatorScheme) {
		return "", "", fmt.Errorf("不是有效的MinIO定位符: %s", locator)
	}
	rest := strings.TrimPrefix(locator, constants.MinIOLocatorScheme)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("MinIO定位符缺少桶名或对象名: %s", locator)
	}
	return parts[0], parts[1], nil
}

// DownloadByLocator 按定位符取回文档内容
func (m *MinIO) DownloadByLocator(ctx context.Context, locator string) ([]byte, error) {
	bucket, objectName, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}

	obj, err := m.client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucket, objectName, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 内容失败: %w", bucket, objectName, err)
	}

	m.logger.Printf("[MinIO] Downloaded document: Locator=%s, Size=%d", locator, len(data))
	return data, nil
}

// DeleteByLocator 按定位符删除文档，供上传后续处理失败时清理
func (m *MinIO) DeleteByLocator(ctx context.Context, locator string) error {
	bucket, objectName, err := ParseLocator(locator)
	if err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
}
