package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromFile 验证 YAML 配置能否被成功加载并覆盖默认值
func TestLoadConfigFromFile(t *testing.T) {
	yamlContent := `
aliyun:
  api_key: "sk-test"
  model: "qwen-plus"
  task_models:
    profile: "qwen-turbo"
    interview: "qwen-max"

pipeline:
  profile_temperature: 0.2
  interview_temperature: 0.9
  llm_timeout_seconds: 30
  persist_by_default: false

server:
  address: ":9090"
  api_key: "secret"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err, "无法写入临时配置文件")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err, "加载合法配置不应返回错误")
	require.NotNil(t, cfg)

	assert.Equal(t, "sk-test", cfg.Aliyun.APIKey)
	assert.InDelta(t, 0.2, cfg.Pipeline.ProfileTemperature, 0.001)
	assert.InDelta(t, 0.9, cfg.Pipeline.InterviewTemperature, 0.001)
	assert.Equal(t, 30, cfg.Pipeline.LLMTimeoutSeconds)
	assert.False(t, cfg.Pipeline.PersistByDefault)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "secret", cfg.Server.APIKey)

	// 文件未覆盖的部分保持默认值
	assert.Equal(t, "anu-cv-uploads", cfg.MinIO.CVBucket)
	assert.Equal(t, "candidate.events", cfg.RabbitMQ.CandidateEventsExchange)
}

// TestLoadConfigDefaults 验证找不到配置文件时返回完整的默认配置
func TestLoadConfigDefaults(t *testing.T) {
	// 切换到空目录，避免搜索路径命中仓库里的config.yaml
	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.InDelta(t, 0.1, cfg.Pipeline.ProfileTemperature, 0.001)
	assert.InDelta(t, 0.8, cfg.Pipeline.InterviewTemperature, 0.001)
	assert.Equal(t, 60, cfg.Pipeline.LLMTimeoutSeconds)
	assert.True(t, cfg.Pipeline.PersistByDefault)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30, cfg.Redis.MD5RecordExpireDays)
}

// TestLoadConfigMissingFile 验证显式指定的配置文件不存在时返回错误
func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// TestApplyEnvOverrides 验证敏感凭证可以通过环境变量覆盖
func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ALIYUN_API_KEY", "sk-env")
	t.Setenv("MYSQL_PASSWORD", "pw-env")
	t.Setenv("RABBITMQ_URL", "amqp://user:pass@mq:5672/")

	tmpDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.Aliyun.APIKey)
	assert.Equal(t, "pw-env", cfg.MySQL.Password)
	assert.Equal(t, "amqp://user:pass@mq:5672/", cfg.RabbitMQ.URL)
}

func TestTaskModel(t *testing.T) {
	cfg := createDefaultConfig()
	cfg.Aliyun.Model = "qwen-plus"
	cfg.Aliyun.TaskModels = map[string]string{"profile": "qwen-turbo"}

	assert.Equal(t, "qwen-turbo", cfg.TaskModel("profile"))
	// 未配置的任务回退到默认模型
	assert.Equal(t, "qwen-plus", cfg.TaskModel("interview"))
}

func TestValidateCredentials(t *testing.T) {
	cfg := createDefaultConfig()
	cfg.Aliyun.APIKey = ""

	err := cfg.ValidateCredentials()
	require.Error(t, err)

	var missing *ErrMissingCredential
	assert.ErrorAs(t, err, &missing)

	cfg.Aliyun.APIKey = "sk-test"
	assert.NoError(t, cfg.ValidateCredentials())
}
