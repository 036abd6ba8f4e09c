package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"anu-agent-go/internal/types"

	"github.com/cloudwego/eino/components/model"
)

const profileExtractionSystemPrompt = "You are a helpful data extractor for an AI recruiter. " +
	"Analyze CV and DICE assessment data to extract structured candidate information. " +
	"For DICE assessments, analyze the pattern of responses to determine work style preferences. " +
	"Always return valid JSON only."

// LLMProfileExtractor 使用LLM从CV和DICE测评文本中提取结构化候选人画像
type LLMProfileExtractor struct {
	completer *structuredCompleter

	// 低温度保证提取结果的确定性
	temperature float32

	logger *log.Logger
}

// ProfileExtractorOption 画像提取器的配置选项
type ProfileExtractorOption func(*LLMProfileExtractor)

// WithProfileTemperature 覆盖默认的提取温度
func WithProfileTemperature(t float32) ProfileExtractorOption {
	return func(e *LLMProfileExtractor) {
		e.temperature = t
	}
}

// WithProfileTimeout 覆盖单次LLM调用的超时，非正值保留默认超时
func WithProfileTimeout(d time.Duration) ProfileExtractorOption {
	return func(e *LLMProfileExtractor) {
		if d > 0 {
			e.completer.timeout = d
		}
	}
}

// NewLLMProfileExtractor 创建新的画像提取器
func NewLLMProfileExtractor(llmModel model.ToolCallingChatModel, logger *log.Logger, options ...ProfileExtractorOption) *LLMProfileExtractor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	extractor := &LLMProfileExtractor{
		completer:   newStructuredCompleter(llmModel, 60*time.Second, logger),
		temperature: 0.1,
		logger:      logger,
	}

	for _, opt := range options {
		opt(extractor)
	}

	return extractor
}

// ExtractProfile 从两段原始文本中提取候选人画像。
// 任何失败（调用出错、输出不是JSON）都降级为规范空画像，不向上传播错误，
// 后续阶段据此继续运行。解析成功时模型输出原样返回，缺失字段由校验阶段报告。
func (e *LLMProfileExtractor) ExtractProfile(ctx context.Context, cvText string, diceText string) *types.CandidateProfile {
	userPrompt := e.buildUserPrompt(cvText, diceText)

	var profile types.CandidateProfile
	if err := e.completer.completeJSON(ctx, profileExtractionSystemPrompt, userPrompt, e.temperature, &profile); err != nil {
		e.logger.Printf("[ProfileExtractor] 画像提取失败，使用空画像降级: %v", err)
		return types.EmptyCandidateProfile()
	}

	name := profile.Name
	if name == "" {
		name = "Unknown"
	}
	e.logger.Printf("[ProfileExtractor] Successfully extracted profile for: %s", name)
	return &profile
}

func (e *LLMProfileExtractor) buildUserPrompt(cvText string, diceText string) string {
	return fmt.Sprintf(`
CV TEXT:
%s

DICE TEXT:
%s

---

Please extract the following structured data in JSON format:

{
  "name": "<name>",
  "email": "<email>",
  "skills": ["...", "..."],
  "cad_tools": ["SolidWorks", "Fusion 360"],
  "projects": ["...", "..."],
  "personality_type": "<DICE summary>",
  "tone_profile": "<interview tone>"
}

IMPORTANT GUIDELINES:
- Return ONLY valid JSON, no additional text
- For skills: include technical tools, software, domains mentioned
- For cad_tools: specifically CAD/CAM software (SolidWorks, Fusion 360, AutoCAD, etc.)
- For projects: list actual project names/titles (max 3)
- For personality_type: analyze DICE responses to determine work style (e.g., "High C (Creative), Mid D (Drive)", "Balanced DICE profile", "Detail-oriented and systematic")
- For tone_profile: describe interview approach based on personality (e.g., "warm and curious", "structured and mentor-like", "enthusiastic and collaborative")
- If information is not found, use empty strings for text fields and empty arrays for lists
`, cvText, diceText)
}
