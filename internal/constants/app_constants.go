package constants

import "time"

const (
	// ServiceName 服务名，用于tracing与事件来源标识
	ServiceName = "anu-agent-go"

	// CandidateStatusPending 持久化记录的初始状态
	CandidateStatusPending = "pending"

	// DocumentKindCV 简历文档
	DocumentKindCV = "cv"
	// DocumentKindDICE DICE测评文档
	DocumentKindDICE = "dice"

	// MinIOLocatorScheme MinIO对象定位符前缀，例如 minio://anu-cv-uploads/xxx.pdf
	MinIOLocatorScheme = "minio://"

	// ResultCacheTTL 管道结果缓存的有效期
	ResultCacheTTL = 30 * time.Minute
)
