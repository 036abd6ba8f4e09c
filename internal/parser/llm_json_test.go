package parser

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试用LLM模型模拟器
type MockLLMModel struct {
	// 模拟响应
	mockResponse string
	// 用于测试的错误
	Err error
	// 用于测试的调用次数
	CallCount int
	// 记录最近一次调用收到的温度
	lastTemperature *float32
	// 记录最近一次调用收到的消息
	lastMessages []*schema.Message
}

// Generate 实现model.BaseChatModel接口
func (m *MockLLMModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	m.CallCount++
	m.lastMessages = messages

	opts := model.GetCommonOptions(&model.Options{}, options...)
	m.lastTemperature = opts.Temperature

	if m.Err != nil {
		return nil, m.Err
	}
	return &schema.Message{
		Role:    "assistant",
		Content: m.mockResponse,
	}, nil
}

// Stream 实现model.BaseChatModel接口
func (m *MockLLMModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	// 测试中不需要流式响应
	return nil, nil
}

// WithTools 实现 model.ToolCallingChatModel 接口
func (m *MockLLMModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func TestExtractJSON(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "纯JSON",
			input:    `{"name": "Samiya"}`,
			expected: `{"name": "Samiya"}`,
		},
		{
			name:     "json代码块",
			input:    "Here you go:\n```json\n{\"name\": \"Samiya\"}\n```\nHope that helps!",
			expected: `{"name": "Samiya"}`,
		},
		{
			name:     "前后有说明文字",
			input:    `Sure! The extracted data is {"name": "Samiya", "skills": ["CAM"]} as requested.`,
			expected: `{"name": "Samiya", "skills": ["CAM"]}`,
		},
		{
			name:     "嵌套大括号",
			input:    `{"answers": {"location": "Bengaluru"}}`,
			expected: `{"answers": {"location": "Bengaluru"}}`,
		},
		{
			name:     "没有JSON",
			input:    "I'm sorry, I can't help with that.",
			expected: "",
		},
		{
			name:     "大括号未闭合",
			input:    `{"name": "Samiya"`,
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractJSON(tc.input))
		})
	}
}

func TestCompleteJSONPassesTemperature(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: `{"name": "Samiya"}`}
	completer := newStructuredCompleter(mockModel, 0, nil)

	var out struct {
		Name string `json:"name"`
	}
	err := completer.completeJSON(context.Background(), "system", "user", 0.1, &out)
	require.NoError(t, err)
	assert.Equal(t, "Samiya", out.Name)

	require.NotNil(t, mockModel.lastTemperature)
	assert.InDelta(t, 0.1, float64(*mockModel.lastTemperature), 1e-6)

	require.Len(t, mockModel.lastMessages, 2)
	assert.Equal(t, "system", mockModel.lastMessages[0].Content)
	assert.Equal(t, "user", mockModel.lastMessages[1].Content)
}

func TestCompleteJSONInvalidOutput(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: "no json here"}
	completer := newStructuredCompleter(mockModel, 0, nil)

	var out map[string]interface{}
	err := completer.completeJSON(context.Background(), "system", "user", 0.1, &out)
	assert.Error(t, err)
	assert.Equal(t, 1, mockModel.CallCount, "失败不重试")
}

func TestCompleteJSONSingleAttempt(t *testing.T) {
	// 超时等传输错误同样只触发一次调用，由调用方降级到默认值
	mockModel := &MockLLMModel{Err: context.DeadlineExceeded}
	completer := newStructuredCompleter(mockModel, 0, nil)

	var out map[string]interface{}
	err := completer.completeJSON(context.Background(), "system", "user", 0.8, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mockModel.CallCount, "每次使用只发起一次补全调用")
}
