package parser

import (
	"context"
	"errors"
	"testing"
	"time"

	"anu-agent-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProfileSuccess(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: `{
		"name": "Samiya Naik",
		"email": "samiya@example.com",
		"skills": ["SolidWorks", "CAM Programming", "3D Modeling"],
		"cad_tools": ["SolidWorks", "Fusion 360"],
		"projects": ["Drone kill switch circuit design", "Tool design for vacuum forming mold"],
		"personality_type": "High C, Mid D",
		"tone_profile": "structured and logical"
	}`}

	extractor := NewLLMProfileExtractor(mockModel, nil)
	profile := extractor.ExtractProfile(context.Background(), "cv text", "dice text")

	require.NotNil(t, profile)
	assert.Equal(t, "Samiya Naik", profile.Name)
	assert.Equal(t, "samiya@example.com", profile.Email)
	assert.Equal(t, []string{"SolidWorks", "Fusion 360"}, profile.CADTools)
	assert.Len(t, profile.Projects, 2)
	assert.Equal(t, "High C, Mid D", profile.PersonalityType)
	assert.Equal(t, "structured and logical", profile.ToneProfile)
}

func TestExtractProfileUsesLowTemperature(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: `{"name": "A"}`}

	extractor := NewLLMProfileExtractor(mockModel, nil)
	extractor.ExtractProfile(context.Background(), "cv", "dice")

	require.NotNil(t, mockModel.lastTemperature)
	assert.InDelta(t, 0.1, float64(*mockModel.lastTemperature), 1e-6)
}

func TestWithProfileTimeoutIgnoresNonPositive(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: `{"name": "A"}`}

	// 配置为0时保留默认超时，避免每次调用都拿到一个已过期的上下文
	extractor := NewLLMProfileExtractor(mockModel, nil, WithProfileTimeout(0))
	assert.Equal(t, 60*time.Second, extractor.completer.timeout)

	profile := extractor.ExtractProfile(context.Background(), "cv", "dice")
	assert.Equal(t, "A", profile.Name)

	extractor = NewLLMProfileExtractor(mockModel, nil, WithProfileTimeout(5*time.Second))
	assert.Equal(t, 5*time.Second, extractor.completer.timeout)
}

func TestExtractProfilePromptContainsInputs(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: `{"name": "A"}`}

	extractor := NewLLMProfileExtractor(mockModel, nil)
	extractor.ExtractProfile(context.Background(), "RAW CV CONTENT", "RAW DICE CONTENT")

	require.Len(t, mockModel.lastMessages, 2)
	userPrompt := mockModel.lastMessages[1].Content
	assert.Contains(t, userPrompt, "RAW CV CONTENT")
	assert.Contains(t, userPrompt, "RAW DICE CONTENT")
	assert.Contains(t, userPrompt, "Return ONLY valid JSON")
}

func TestExtractProfileFallsBackOnLLMError(t *testing.T) {
	mockModel := &MockLLMModel{Err: errors.New("model unavailable")}

	extractor := NewLLMProfileExtractor(mockModel, nil)
	profile := extractor.ExtractProfile(context.Background(), "cv", "dice")

	require.NotNil(t, profile)
	assert.Equal(t, types.EmptyCandidateProfile(), profile)
	assert.NotNil(t, profile.Skills, "降级画像的切片必须是非nil空切片")
	assert.NotNil(t, profile.CADTools)
	assert.NotNil(t, profile.Projects)
}

func TestExtractProfileFallsBackOnMalformedOutput(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: "I could not find any structured data."}

	extractor := NewLLMProfileExtractor(mockModel, nil)
	profile := extractor.ExtractProfile(context.Background(), "cv", "dice")

	require.NotNil(t, profile)
	assert.Equal(t, types.EmptyCandidateProfile(), profile)
}

func TestExtractProfileKeepsMissingFieldsAsIs(t *testing.T) {
	// 模型漏掉字段时不做回填，由校验阶段报告
	mockModel := &MockLLMModel{mockResponse: `{"name": "B", "email": "b@example.com"}`}

	extractor := NewLLMProfileExtractor(mockModel, nil)
	profile := extractor.ExtractProfile(context.Background(), "cv", "dice")

	require.NotNil(t, profile)
	assert.Equal(t, "B", profile.Name)
	assert.Nil(t, profile.Skills)
	assert.Nil(t, profile.CADTools)
}
