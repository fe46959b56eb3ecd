package pool

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferPool(t *testing.T) {
	bp := NewBufferPool()
	require.NotNil(t, bp)
	assert.NotNil(t, bp.small)
	assert.NotNil(t, bp.medium)
	assert.NotNil(t, bp.large)
}

func TestBufferPool_Get(t *testing.T) {
	tests := []struct {
		name   string
		length int64
		want   int
	}{
		{name: "unbounded uses medium", length: -1, want: MediumBufferSize},
		{name: "zero uses small", length: 0, want: SmallBufferSize},
		{name: "small bound", length: 100, want: SmallBufferSize},
		{name: "medium bound", length: SmallBufferSize + 1, want: MediumBufferSize},
		{name: "large bound", length: 5 * LargeBufferSize, want: LargeBufferSize},
	}

	bp := NewBufferPool()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bp.Get(tt.length)
			assert.Equal(t, tt.want, len(buf))
			assert.Equal(t, tt.want, cap(buf))
			bp.Put(buf)
		})
	}
}

func TestBufferPool_PutForeignBuffer(t *testing.T) {
	bp := NewBufferPool()
	assert.NotPanics(t, func() {
		bp.Put(make([]byte, 10))
	})
}

func TestCopy(t *testing.T) {
	src := strings.Repeat("abcdefgh", 10000)

	t.Run("unbounded", func(t *testing.T) {
		var dst bytes.Buffer
		n, err := Copy(&dst, strings.NewReader(src), -1)
		require.NoError(t, err)
		assert.Equal(t, int64(len(src)), n)
		assert.Equal(t, src, dst.String())
	})

	t.Run("bounded", func(t *testing.T) {
		var dst bytes.Buffer
		n, err := Copy(&dst, strings.NewReader(src), 12)
		require.NoError(t, err)
		assert.Equal(t, int64(12), n)
		assert.Equal(t, src[:12], dst.String())
	})

	t.Run("bound past end", func(t *testing.T) {
		var dst bytes.Buffer
		n, err := Copy(&dst, strings.NewReader("abc"), 100)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		assert.Equal(t, "abc", dst.String())
	})
}
