package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"anu-agent-go/internal/types"

	"github.com/cloudwego/eino/components/model"
)

// LLMInterviewGenerator 以Anu人设为候选人合成一段完整的导师式模拟面试
type LLMInterviewGenerator struct {
	completer *structuredCompleter

	// 高温度让对话更自然
	temperature float32

	logger *log.Logger
	now    func() time.Time
}

// InterviewGeneratorOption 面试生成器的配置选项
type InterviewGeneratorOption func(*LLMInterviewGenerator)

// WithInterviewTemperature 覆盖默认的生成温度
func WithInterviewTemperature(t float32) InterviewGeneratorOption {
	return func(g *LLMInterviewGenerator) {
		g.temperature = t
	}
}

// WithInterviewTimeout 覆盖单次LLM调用的超时，非正值保留默认超时
func WithInterviewTimeout(d time.Duration) InterviewGeneratorOption {
	return func(g *LLMInterviewGenerator) {
		if d > 0 {
			g.completer.timeout = d
		}
	}
}

// WithInterviewClock 注入时钟，测试用
func WithInterviewClock(now func() time.Time) InterviewGeneratorOption {
	return func(g *LLMInterviewGenerator) {
		g.now = now
	}
}

// NewLLMInterviewGenerator 创建新的面试生成器
func NewLLMInterviewGenerator(llmModel model.ToolCallingChatModel, logger *log.Logger, options ...InterviewGeneratorOption) *LLMInterviewGenerator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	generator := &LLMInterviewGenerator{
		completer:   newStructuredCompleter(llmModel, 60*time.Second, logger),
		temperature: 0.8,
		logger:      logger,
		now:         time.Now,
	}

	for _, opt := range options {
		opt(generator)
	}

	return generator
}

// GenerateInterview 基于画像合成面试记录。
// 成功时回填缺失的可选字段并附加元数据；任何失败都降级为规范默认记录，
// 不向上传播错误。画像缺字段（甚至为nil）不阻止生成。
func (g *LLMInterviewGenerator) GenerateInterview(ctx context.Context, profile *types.CandidateProfile) *types.InterviewRecord {
	name, toneProfile := interviewIdentity(profile)

	systemPrompt := g.buildSystemPrompt(name, toneProfile)
	userPrompt := g.buildUserPrompt(profile, name)

	var record types.InterviewRecord
	if err := g.completer.completeJSON(ctx, systemPrompt, userPrompt, g.temperature, &record); err != nil {
		g.logger.Printf("[InterviewGenerator] 面试生成失败，使用降级记录: %v", err)
		return types.DefaultInterviewRecord(profile, g.now())
	}

	// 回填可选字段，保证记录结构完整
	if record.Memories == nil {
		record.Memories = []string{}
	}
	if record.Answers == nil {
		record.Answers = map[string]string{}
	}
	if record.SummaryNotes == "" {
		record.SummaryNotes = fmt.Sprintf("Interview completed for %s. Manual review recommended.", name)
	}

	record.Metadata = types.InterviewMetadata{
		GeneratedAt:   g.now().Format(time.RFC3339),
		CandidateName: name,
		Version:       types.InterviewFormatVersion,
	}
	if profile != nil {
		record.Metadata.PersonalityType = profile.PersonalityType
		record.Metadata.ToneProfile = profile.ToneProfile
	}

	g.logger.Printf("[InterviewGenerator] Interview generated for %s: %d turns, %d memories",
		name, len(record.ChatLog), len(record.Memories))
	return &record
}

// interviewIdentity 从画像中取称呼和语气，缺省时使用与降级记录一致的默认值
func interviewIdentity(profile *types.CandidateProfile) (name string, toneProfile string) {
	name = "Candidate"
	toneProfile = "warm and curious"
	if profile != nil {
		if profile.Name != "" {
			name = profile.Name
		}
		if profile.ToneProfile != "" {
			toneProfile = profile.ToneProfile
		}
	}
	return name, toneProfile
}

func (g *LLMInterviewGenerator) buildSystemPrompt(name string, toneProfile string) string {
	return fmt.Sprintf(`
You are Anu, an AI recruiter with a warm, mentor-like tone. You are smart, emotionally intelligent, and deeply curious about people. Your tone is: %s

Your goal is to interview a candidate conversationally. Ask one question at a time. React to their answer with genuine interest and encouragement. Then ask them to share a story, example, or what they learned from that experience.

Build a memory of each exchange as a 1-line takeaway about their personality, work style, or values. At the end, use the answers + memories to write a 3-line summary of the candidate's strengths, mindset, and culture fit.

Key questions to cover (but ask them naturally in conversation):
- Where are they based?
- Education/graduation status
- Tell me about their projects (ask for specific stories)
- CAD tools they enjoy using
- Preference for hands-on vs design-only work
- Openness to relocating to Umargam
- Commitment to 2-3 years
- Salary expectations
- Interest in factory visit

Use emojis occasionally to keep it warm and engaging. Be genuinely curious about their experiences and what drives them.

Respond in JSON format:
{
  "chat_log": [
    {"role": "Anu", "message": "Hi %s! So happy to chat with you today! Where are you currently based?"},
    {"role": "Candidate", "message": "I'm in Bengaluru."},
    {"role": "Anu", "message": "Love that city! 💫 What do you enjoy most about living there?"}
  ],
  "answers": {
    "location": "Bengaluru",
    "education_status": "Recently graduated",
    "internship_work": "Worked on drone projects",
    "cad_tools": "SolidWorks, AutoCAD",
    "role_preference": "Hands-on work",
    "relocation": "Open to relocating",
    "commitment": "Willing for 2-3 years",
    "salary_expectation": "Within budget",
    "factory_visit_interest": "Very interested"
  },
  "memories": [
    "Kishore enjoys hands-on roles and feels most fulfilled when seeing his designs in action.",
    "He took initiative during his internship to integrate ML models without being asked."
  ],
  "summary_notes": "Kishore is a thoughtful, technically sharp candidate who thrives in hands-on environments. He takes initiative and has strong interdisciplinary thinking. Great culture fit for small team learning environments."
}
`, toneProfile, name)
}

func (g *LLMInterviewGenerator) buildUserPrompt(profile *types.CandidateProfile, name string) string {
	var personalityType string
	var skills, cadTools, projects []string
	if profile != nil {
		personalityType = profile.PersonalityType
		skills = profile.Skills
		cadTools = profile.CADTools
		projects = profile.Projects
	}
	if personalityType == "" {
		personalityType = "Unknown"
	}

	return fmt.Sprintf(`
Here's the candidate profile:

Name: %s
Personality Type: %s
Skills: %s
CAD Tools: %s
Projects: %s

Begin the interview now. Make it feel like a natural conversation between two people getting to know each other.
`, name, personalityType, strings.Join(skills, ", "), strings.Join(cadTools, ", "), strings.Join(projects, ", "))
}

// FormatChatForDisplay 把会话记录格式化成可读文本，供终端输出和人工复核
func FormatChatForDisplay(record *types.InterviewRecord) string {
	if record == nil || record.ChatLog == nil {
		return "No chat log available"
	}

	lines := make([]string, 0, len(record.ChatLog))
	for _, turn := range record.ChatLog {
		role := string(turn.Role)
		if role == "" {
			role = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, turn.Message))
	}
	return strings.Join(lines, "\n\n")
}

// FormatMemoriesForDisplay 把备忘列表格式化成带编号的可读文本
func FormatMemoriesForDisplay(record *types.InterviewRecord) string {
	if record == nil || record.Memories == nil {
		return "No memories available"
	}
	if len(record.Memories) == 0 {
		return "No memories captured"
	}

	lines := make([]string, 0, len(record.Memories))
	for i, memory := range record.Memories {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, memory))
	}
	return strings.Join(lines, "\n")
}
