package types

import "time"

// InterviewFormatVersion 当前面试生成结果的格式版本标签
const InterviewFormatVersion = "Anu v2 - Conversational Mentor"

// InterviewFallbackVersion 生成失败时降级结果的格式版本标签
const InterviewFallbackVersion = "Anu v2 - Fallback"

// ChatRole 表示会话中的发言角色
type ChatRole string

const (
	// RoleAnu AI面试官
	RoleAnu ChatRole = "Anu"
	// RoleCandidate 候选人
	RoleCandidate ChatRole = "Candidate"
)

// 答案主题键，面试必须覆盖的固定话题集合
const (
	AnswerLocation        = "location"
	AnswerEducationStatus = "education_status"
	AnswerInternshipWork  = "internship_work"
	AnswerCADTools        = "cad_tools"
	AnswerRolePreference  = "role_preference"
	AnswerRelocation      = "relocation"
	AnswerCommitment      = "commitment"
	AnswerSalary          = "salary_expectation"
	AnswerFactoryVisit    = "factory_visit_interest"
)

// AnswerTopicKeys 按固定顺序列出全部答案主题键
// 注意：该集合只作为提示词约定，不在解析后做硬校验（保留上游宽松语义）
var AnswerTopicKeys = []string{
	AnswerLocation,
	AnswerEducationStatus,
	AnswerInternshipWork,
	AnswerCADTools,
	AnswerRolePreference,
	AnswerRelocation,
	AnswerCommitment,
	AnswerSalary,
	AnswerFactoryVisit,
}

// CandidateProfile 从CV和DICE测评文本中提取的候选人结构化画像
// 七个字段在合法画像中必须全部存在；切片字段为空时也必须是非nil的空切片
type CandidateProfile struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Skills          []string `json:"skills"`
	CADTools        []string `json:"cad_tools"`
	Projects        []string `json:"projects"` // 提示词中约定最多3个，不做程序性截断
	PersonalityType string   `json:"personality_type"`
	ToneProfile     string   `json:"tone_profile"`
}

// EmptyCandidateProfile 返回规范的空画像（所有字符串为空，所有切片为非nil空切片）
// 这是提取失败时的唯一降级值，保证下游永远看到完整的字段形状
func EmptyCandidateProfile() *CandidateProfile {
	return &CandidateProfile{
		Skills:   []string{},
		CADTools: []string{},
		Projects: []string{},
	}
}

// ChatTurn 会话中的一轮发言
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Message string   `json:"message"`
}

// InterviewMetadata 面试生成的附加元数据，仅供参考，不参与校验
type InterviewMetadata struct {
	GeneratedAt     string `json:"generated_at"` // RFC3339
	CandidateName   string `json:"candidate_name"`
	PersonalityType string `json:"personality_type,omitempty"`
	ToneProfile     string `json:"tone_profile,omitempty"`
	Version         string `json:"version"`
	Error           string `json:"error,omitempty"` // 仅降级分支携带
}

// InterviewRecord 为单个候选人合成的面试产物
// chat_log/answers/memories/summary_notes 四个字段在合法记录中必须全部存在
type InterviewRecord struct {
	ChatLog      []ChatTurn        `json:"chat_log"`
	Answers      map[string]string `json:"answers"`
	Memories     []string          `json:"memories"`
	SummaryNotes string            `json:"summary_notes"`
	Metadata     InterviewMetadata `json:"metadata"`
}

// DefaultInterviewRecord 返回生成失败时的规范降级记录：
// 两轮寒暄、全部答案主题置空、恰好一条失败备忘、以及相同措辞的总结
func DefaultInterviewRecord(profile *CandidateProfile, now time.Time) *InterviewRecord {
	name := "Candidate"
	if profile != nil && profile.Name != "" {
		name = profile.Name
	}

	answers := make(map[string]string, len(AnswerTopicKeys))
	for _, key := range AnswerTopicKeys {
		answers[key] = ""
	}

	failureNote := "Interview generation failed for " + name + ". Manual review required."

	record := &InterviewRecord{
		ChatLog: []ChatTurn{
			{Role: RoleAnu, Message: "Hi " + name + "! I'm Anu from Kinara. So excited to chat with you today! ✨"},
			{Role: RoleCandidate, Message: "Hi Anu! Nice to meet you too."},
		},
		Answers:      answers,
		Memories:     []string{failureNote},
		SummaryNotes: failureNote,
		Metadata: InterviewMetadata{
			GeneratedAt:   now.Format(time.RFC3339),
			CandidateName: name,
			Version:       InterviewFallbackVersion,
			Error:         "Interview generation failed",
		},
	}
	if profile != nil {
		record.Metadata.PersonalityType = profile.PersonalityType
		record.Metadata.ToneProfile = profile.ToneProfile
	}
	return record
}

// PipelineStatus 管道调用的终态
type PipelineStatus string

const (
	// StatusSuccess 管道正常完成（内部降级不改变该状态）
	StatusSuccess PipelineStatus = "success"
	// StatusError 文本提取阶段失败导致管道中止
	StatusError PipelineStatus = "error"
)

// PipelineResult 编排器的最终输出，始终是结构完整的对象
type PipelineResult struct {
	Profile   *CandidateProfile `json:"profile"`
	Interview *InterviewRecord  `json:"interview"`
	// summary_notes 与 memories 为面试记录同名字段的顶层冗余副本，便于直接读取
	SummaryNotes string         `json:"summary_notes"`
	Memories     []string       `json:"memories"`
	Status       PipelineStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
}
