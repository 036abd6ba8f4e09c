package models

import (
	"encoding/json"
	"testing"
	"time"

	"anu-agent-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCandidateRecord(t *testing.T) {
	profile := &types.CandidateProfile{
		Name:            "Samiya Naik",
		Email:           "samiya@example.com",
		Skills:          []string{"SolidWorks", "CAM Programming"},
		CADTools:        []string{"SolidWorks"},
		Projects:        []string{"Fixture design"},
		PersonalityType: "Builder",
		ToneProfile:     "direct and upbeat",
	}
	interview := &types.InterviewRecord{
		ChatLog: []types.ChatTurn{
			{Role: types.RoleAnu, Message: "Hi Samiya Naik! I'm Anu from Kinara. So excited to chat with you today! ✨"},
		},
		Answers:      map[string]string{types.AnswerLocation: "Mumbai"},
		Memories:     []string{"Wants factory exposure"},
		SummaryNotes: "Interview completed for Samiya Naik. Manual review recommended.",
		Metadata: types.InterviewMetadata{
			GeneratedAt:   time.Now().Format(time.RFC3339),
			CandidateName: "Samiya Naik",
			Version:       types.InterviewFormatVersion,
		},
	}

	record := NewCandidateRecord("0196fae2-0000-7000-8000-000000000000", profile, interview,
		"minio://anu-cv-uploads/x/cv.pdf", "minio://anu-dice-uploads/x/dice.pdf")
	require.NotNil(t, record)

	assert.Equal(t, "Samiya Naik", record.Name)
	assert.Equal(t, "samiya@example.com", record.Email)
	assert.Equal(t, "SolidWorks,CAM Programming", record.Skills)
	assert.Equal(t, "pending", record.Status)
	assert.Equal(t, "direct and upbeat", record.ToneProfile)
	assert.Equal(t, interview.SummaryNotes, record.SummaryNotes)

	var memories []string
	require.NoError(t, json.Unmarshal(record.Memories, &memories))
	assert.Equal(t, []string{"Wants factory exposure"}, memories)

	var answers map[string]string
	require.NoError(t, json.Unmarshal(record.Answers, &answers))
	assert.Equal(t, "Mumbai", answers[types.AnswerLocation])
}

// 画像或面试缺失时仍能生成可归档的行
func TestNewCandidateRecordNilInputs(t *testing.T) {
	record := NewCandidateRecord("uuid-1", nil, nil, "cv.pdf", "dice.pdf")
	require.NotNil(t, record)

	assert.Equal(t, "uuid-1", record.RecordUUID)
	assert.Empty(t, record.Name)
	assert.Equal(t, "pending", record.Status)
	assert.Empty(t, record.Memories)
}
