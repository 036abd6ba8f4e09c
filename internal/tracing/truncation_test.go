package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "a*", MaskPII("ab"))
	assert.Equal(t, "a**d", MaskPII("abcd"))

	masked := MaskPII("ravi@example.com")
	assert.True(t, strings.HasPrefix(masked, "ra"))
	assert.True(t, strings.HasSuffix(masked, "om"))
	assert.NotContains(t, masked, "example")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))

	long := strings.Repeat("x", 500)
	truncated := TruncateString(long, 100)
	assert.LessOrEqual(t, len(truncated), 100+len("...")+20)
	assert.Contains(t, truncated, "...")
}

func TestSafeDocumentContent(t *testing.T) {
	doc := strings.Repeat("resume text ", 100)
	safe := SafeDocumentContent(doc)
	assert.Less(t, len(safe), len(doc))
}
