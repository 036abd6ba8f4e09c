package processor

import (
	"testing"

	"anu-agent-go/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestValidateProfile(t *testing.T) {
	t.Run("完整画像", func(t *testing.T) {
		missing, ok := ValidateProfile(&types.CandidateProfile{
			Name:     "Samiya",
			Skills:   []string{"CAM"},
			CADTools: []string{},
			Projects: []string{},
		})
		assert.True(t, ok)
		assert.Empty(t, missing)
	})

	t.Run("空切片是合法的没找到", func(t *testing.T) {
		_, ok := ValidateProfile(types.EmptyCandidateProfile())
		assert.True(t, ok)
	})

	t.Run("nil切片视为字段缺失", func(t *testing.T) {
		missing, ok := ValidateProfile(&types.CandidateProfile{Name: "A"})
		assert.False(t, ok)
		assert.ElementsMatch(t, []string{"skills", "cad_tools", "projects"}, missing)
	})

	t.Run("nil画像", func(t *testing.T) {
		missing, ok := ValidateProfile(nil)
		assert.False(t, ok)
		assert.Equal(t, []string{"profile"}, missing)
	})
}

func TestValidateInterview(t *testing.T) {
	t.Run("完整记录", func(t *testing.T) {
		_, ok := ValidateInterview(&types.InterviewRecord{
			ChatLog:      []types.ChatTurn{},
			Answers:      map[string]string{},
			Memories:     []string{},
			SummaryNotes: "ok",
		})
		assert.True(t, ok)
	})

	t.Run("降级记录合法", func(t *testing.T) {
		record := types.DefaultInterviewRecord(nil, testNow())
		_, ok := ValidateInterview(record)
		assert.True(t, ok)
	})

	t.Run("缺失字段", func(t *testing.T) {
		missing, ok := ValidateInterview(&types.InterviewRecord{
			ChatLog: []types.ChatTurn{},
		})
		assert.False(t, ok)
		assert.ElementsMatch(t, []string{"answers", "memories", "summary_notes"}, missing)
	})

	t.Run("nil记录", func(t *testing.T) {
		missing, ok := ValidateInterview(nil)
		assert.False(t, ok)
		assert.Equal(t, []string{"interview"}, missing)
	})
}
