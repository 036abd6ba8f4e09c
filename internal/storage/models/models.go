package models

import (
	"encoding/json"
	"strings"
	"time"

	"anu-agent-go/internal/constants"
	"anu-agent-go/internal/types"
	"anu-agent-go/pkg/utils"

	"gorm.io/datatypes"
)

// CandidateRecord 候选人面试归档表，一行对应一次完整的管道运行
// 扁平字段便于HR后台直接筛选，完整产物以JSON列保留
type CandidateRecord struct {
	RecordID        uint64         `gorm:"primaryKey;autoIncrement"`
	RecordUUID      string         `gorm:"type:char(36);uniqueIndex:idx_cr_record_uuid"`
	Name            string         `gorm:"type:varchar(255);index:idx_cr_name"`
	Email           string         `gorm:"type:varchar(255);index:idx_cr_email"`
	CVURL           string         `gorm:"type:varchar(1024)"`
	DICEURL         string         `gorm:"type:varchar(1024)"`
	Skills          string         `gorm:"type:text"` // 逗号连接的技能列表
	Status          string         `gorm:"type:varchar(50);default:'pending';index:idx_cr_status"`
	PersonalityType string         `gorm:"type:varchar(255)"`
	ToneProfile     string         `gorm:"type:varchar(255)"`
	SummaryNotes    string         `gorm:"type:text"`
	Memories        datatypes.JSON `gorm:"type:json"`
	Answers         datatypes.JSON `gorm:"type:json"`
	ChatLog         datatypes.JSON `gorm:"type:json"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (CandidateRecord) TableName() string {
	return "candidate_records"
}

// NewCandidateRecord 把管道产物投影成扁平的归档行。
// 技能列表逗号连接，状态固定写入pending，面试明细序列化到JSON列。
// 序列化失败的JSON列留空，不阻止归档。
func NewCandidateRecord(recordUUID string, profile *types.CandidateProfile, interview *types.InterviewRecord, cvURL, diceURL string) *CandidateRecord {
	record := &CandidateRecord{
		RecordUUID: recordUUID,
		CVURL:      cvURL,
		DICEURL:    diceURL,
		Status:     constants.CandidateStatusPending,
	}

	if profile != nil {
		record.Name = profile.Name
		record.Email = profile.Email
		record.Skills = strings.Join(profile.Skills, ",")
		record.PersonalityType = profile.PersonalityType
		record.ToneProfile = profile.ToneProfile
	}

	if interview != nil {
		record.SummaryNotes = interview.SummaryNotes
		record.Memories = utils.ConvertArrayToJSON(interview.Memories)
		if data, err := json.Marshal(interview.Answers); err == nil {
			record.Answers = datatypes.JSON(data)
		}
		if data, err := json.Marshal(interview.ChatLog); err == nil {
			record.ChatLog = datatypes.JSON(data)
		}
	}

	return record
}
