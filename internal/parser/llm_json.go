package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
)

// structuredCompleter 封装"一次补全调用 + 严格JSON解析"的公共流程。
// 画像提取与面试合成是同一个模式的两次实例化：只有提示词、温度和目标结构不同，
// 失败时的规范降级值由各自的调用方提供。
type structuredCompleter struct {
	llmModel model.ToolCallingChatModel
	timeout  time.Duration
	logger   *log.Logger
}

func newStructuredCompleter(llmModel model.ToolCallingChatModel, timeout time.Duration, logger *log.Logger) *structuredCompleter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &structuredCompleter{
		llmModel: llmModel,
		timeout:  timeout,
		logger:   logger,
	}
}

// completeJSON 发送system+user两条消息，按给定温度采样一次，
// 并将模型输出严格解析到out指向的结构。传输失败与解析失败统一返回错误，
// 由调用方决定降级值。每次使用恰好发起一次补全调用，失败即降级，不做重试。
func (s *structuredCompleter) completeJSON(ctx context.Context, systemContent string, userContent string, temperature float32, out interface{}) error {
	messages := []*einoschema.Message{
		{Role: "system", Content: systemContent},
		{Role: "user", Content: userContent},
	}

	// 创建带超时的上下文，继承上游的取消信号
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.llmModel.Generate(callCtx, messages, model.WithTemperature(temperature))
	if err != nil {
		return fmt.Errorf("LLM Generate failed: %w", err)
	}

	jsonStr := extractJSON(response.Content)
	if jsonStr == "" {
		return fmt.Errorf("无法从LLM响应中提取有效的JSON")
	}

	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		return fmt.Errorf("解析JSON失败: %w", err)
	}
	return nil
}

var jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// extractJSON 从文本中提取JSON部分（防止LLM返回的不是纯JSON）
func extractJSON(text string) string {
	// 优先提取 ```json ... ``` 代码块中的内容
	matches := jsonFenceRe.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// 回退：寻找首个配对完整的大括号区间
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	level := 0
	for i := start; i < len(text); i++ {
		if text[i] == '{' {
			level++
		} else if text[i] == '}' {
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}
