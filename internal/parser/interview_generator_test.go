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

func testProfile() *types.CandidateProfile {
	return &types.CandidateProfile{
		Name:            "Kishore BV",
		Email:           "kishore@example.com",
		Skills:          []string{"CAD Designing", "ML Programming"},
		CADTools:        []string{"SolidWorks", "AutoCAD"},
		Projects:        []string{"Lifebuoy Rescue Drone"},
		PersonalityType: "High C, Mid D",
		ToneProfile:     "warm and curious",
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestGenerateInterviewSuccess(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: `{
		"chat_log": [
			{"role": "Anu", "message": "Hi Kishore! Where are you based? 🚀"},
			{"role": "Candidate", "message": "I'm in Bengaluru."}
		],
		"answers": {"location": "Bengaluru", "relocation": "Open to relocating"},
		"memories": ["Kishore enjoys hands-on roles."],
		"summary_notes": "Kishore is a thoughtful, hands-on candidate."
	}`}

	generator := NewLLMInterviewGenerator(mockModel, nil, WithInterviewClock(fixedClock()))
	record := generator.GenerateInterview(context.Background(), testProfile())

	require.NotNil(t, record)
	require.Len(t, record.ChatLog, 2)
	assert.Equal(t, types.RoleAnu, record.ChatLog[0].Role)
	assert.Equal(t, "Bengaluru", record.Answers["location"])
	assert.Equal(t, []string{"Kishore enjoys hands-on roles."}, record.Memories)
	assert.Equal(t, "Kishore is a thoughtful, hands-on candidate.", record.SummaryNotes)

	assert.Equal(t, types.InterviewFormatVersion, record.Metadata.Version)
	assert.Equal(t, "Kishore BV", record.Metadata.CandidateName)
	assert.Equal(t, "High C, Mid D", record.Metadata.PersonalityType)
	assert.Equal(t, "warm and curious", record.Metadata.ToneProfile)
	assert.Equal(t, "2025-06-01T10:30:00Z", record.Metadata.GeneratedAt)
	assert.Empty(t, record.Metadata.Error)
}

func TestGenerateInterviewUsesHighTemperature(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: `{"chat_log": [], "answers": {}, "memories": [], "summary_notes": "ok"}`}

	generator := NewLLMInterviewGenerator(mockModel, nil)
	generator.GenerateInterview(context.Background(), testProfile())

	require.NotNil(t, mockModel.lastTemperature)
	assert.InDelta(t, 0.8, float64(*mockModel.lastTemperature), 1e-6)
}

func TestWithInterviewTimeoutIgnoresNonPositive(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: `{"chat_log": []}`}

	// 配置为0时保留默认超时
	generator := NewLLMInterviewGenerator(mockModel, nil, WithInterviewTimeout(0))
	assert.Equal(t, 60*time.Second, generator.completer.timeout)

	generator = NewLLMInterviewGenerator(mockModel, nil, WithInterviewTimeout(30*time.Second))
	assert.Equal(t, 30*time.Second, generator.completer.timeout)
}

func TestGenerateInterviewPromptCarriesPersona(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: `{"chat_log": [], "answers": {}, "memories": [], "summary_notes": "ok"}`}

	generator := NewLLMInterviewGenerator(mockModel, nil)
	generator.GenerateInterview(context.Background(), testProfile())

	require.Len(t, mockModel.lastMessages, 2)
	systemPrompt := mockModel.lastMessages[0].Content
	assert.Contains(t, systemPrompt, "You are Anu")
	assert.Contains(t, systemPrompt, "warm and curious")
	assert.Contains(t, systemPrompt, "relocating to Umargam")
	assert.Contains(t, systemPrompt, "Commitment to 2-3 years")

	userPrompt := mockModel.lastMessages[1].Content
	assert.Contains(t, userPrompt, "Kishore BV")
	assert.Contains(t, userPrompt, "SolidWorks, AutoCAD")
}

func TestGenerateInterviewBackfillsOptionalFields(t *testing.T) {
	// 模型漏掉memories/answers/summary_notes时回填默认值
	mockModel := &MockLLMModel{mockResponse: `{
		"chat_log": [{"role": "Anu", "message": "Hi!"}]
	}`}

	generator := NewLLMInterviewGenerator(mockModel, nil)
	record := generator.GenerateInterview(context.Background(), testProfile())

	require.NotNil(t, record)
	assert.NotNil(t, record.Memories)
	assert.Empty(t, record.Memories)
	assert.NotNil(t, record.Answers)
	assert.Equal(t, "Interview completed for Kishore BV. Manual review recommended.", record.SummaryNotes)
}

func TestGenerateInterviewFallsBackOnLLMError(t *testing.T) {
	mockModel := &MockLLMModel{Err: errors.New("model unavailable")}

	generator := NewLLMInterviewGenerator(mockModel, nil, WithInterviewClock(fixedClock()))
	record := generator.GenerateInterview(context.Background(), testProfile())

	require.NotNil(t, record)
	require.Len(t, record.ChatLog, 2)
	assert.Equal(t, "Hi Kishore BV! I'm Anu from Kinara. So excited to chat with you today! ✨", record.ChatLog[0].Message)
	assert.Equal(t, "Hi Anu! Nice to meet you too.", record.ChatLog[1].Message)

	require.Len(t, record.Answers, len(types.AnswerTopicKeys))
	for _, key := range types.AnswerTopicKeys {
		answer, ok := record.Answers[key]
		assert.True(t, ok, "答案主题 %s 必须存在", key)
		assert.Empty(t, answer)
	}

	failureNote := "Interview generation failed for Kishore BV. Manual review required."
	assert.Equal(t, []string{failureNote}, record.Memories)
	assert.Equal(t, failureNote, record.SummaryNotes)

	assert.Equal(t, types.InterviewFallbackVersion, record.Metadata.Version)
	assert.Equal(t, "Interview generation failed", record.Metadata.Error)
}

func TestGenerateInterviewFallsBackOnMalformedOutput(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: "Sorry, something went wrong."}

	generator := NewLLMInterviewGenerator(mockModel, nil)
	record := generator.GenerateInterview(context.Background(), testProfile())

	require.NotNil(t, record)
	assert.Equal(t, types.InterviewFallbackVersion, record.Metadata.Version)
}

func TestGenerateInterviewNilProfile(t *testing.T) {
	mockModel := &MockLLMModel{Err: errors.New("model unavailable")}

	generator := NewLLMInterviewGenerator(mockModel, nil)
	record := generator.GenerateInterview(context.Background(), nil)

	require.NotNil(t, record)
	assert.Contains(t, record.ChatLog[0].Message, "Hi Candidate!")
	assert.Equal(t, "Candidate", record.Metadata.CandidateName)
}

func TestFormatChatForDisplay(t *testing.T) {
	record := &types.InterviewRecord{
		ChatLog: []types.ChatTurn{
			{Role: types.RoleAnu, Message: "Hi!"},
			{Role: types.RoleCandidate, Message: "Hello!"},
		},
	}
	assert.Equal(t, "Anu: Hi!\n\nCandidate: Hello!", FormatChatForDisplay(record))
	assert.Equal(t, "No chat log available", FormatChatForDisplay(nil))
}

func TestFormatMemoriesForDisplay(t *testing.T) {
	record := &types.InterviewRecord{
		Memories: []string{"First insight.", "Second insight."},
	}
	assert.Equal(t, "1. First insight.\n2. Second insight.", FormatMemoriesForDisplay(record))
	assert.Equal(t, "No memories captured", FormatMemoriesForDisplay(&types.InterviewRecord{Memories: []string{}}))
	assert.Equal(t, "No memories available", FormatMemoriesForDisplay(nil))
}
