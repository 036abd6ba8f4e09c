package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocator(t *testing.T) {
	t.Run("合法定位符", func(t *testing.T) {
		bucket, objectName, err := ParseLocator("minio://anu-cv-uploads/0196fae2/cv.pdf")
		require.NoError(t, err)
		assert.Equal(t, "anu-cv-uploads", bucket)
		assert.Equal(t, "0196fae2/cv.pdf", objectName)
	})

	t.Run("缺少scheme前缀", func(t *testing.T) {
		_, _, err := ParseLocator("s3://bucket/object.pdf")
		require.Error(t, err)
	})

	t.Run("缺少对象路径", func(t *testing.T) {
		_, _, err := ParseLocator("minio://bucket-only")
		require.Error(t, err)
	})
}
