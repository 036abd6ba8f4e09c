package processor

import (
	"anu-agent-go/internal/types"
)

// ValidateProfile 检查画像是否带有全部必需字段。
// 切片字段为nil视为字段缺失（模型漏掉了该键），空切片是合法的"没找到"。
// 返回false只产生告警，不阻断管道。
func ValidateProfile(profile *types.CandidateProfile) (missing []string, ok bool) {
	if profile == nil {
		return []string{"profile"}, false
	}

	if profile.Skills == nil {
		missing = append(missing, "skills")
	}
	if profile.CADTools == nil {
		missing = append(missing, "cad_tools")
	}
	if profile.Projects == nil {
		missing = append(missing, "projects")
	}

	return missing, len(missing) == 0
}

// ValidateInterview 检查面试记录四个必需字段是否都存在。
// chat_log/answers/memories以nil判缺失，summary_notes以空串判缺失。
func ValidateInterview(record *types.InterviewRecord) (missing []string, ok bool) {
	if record == nil {
		return []string{"interview"}, false
	}

	if record.ChatLog == nil {
		missing = append(missing, "chat_log")
	}
	if record.Answers == nil {
		missing = append(missing, "answers")
	}
	if record.Memories == nil {
		missing = append(missing, "memories")
	}
	if record.SummaryNotes == "" {
		missing = append(missing, "summary_notes")
	}

	return missing, len(missing) == 0
}
