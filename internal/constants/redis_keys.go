package constants

// Redis Key 前缀和格式常量
// 统一命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// CandidateModulePrefix 候选人模块
	CandidateModulePrefix = "candidate"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"

	// EntityResult 管道结果实体
	EntityResult = "result"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"

	// KeyFileMD5Set 上传文档MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyCandidateResult 候选人最近一次管道结果缓存 (STRING, JSON)
	// 格式: app:candidate:result:{email}
	KeyCandidateResult = AppPrefix + ":" + CandidateModulePrefix + ":" + EntityResult + ":%s"
)
