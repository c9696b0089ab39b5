package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sum(nil))
	assert.Len(t, Sum([]byte("gift")), 64)
}

func TestOf(t *testing.T) {
	type item struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	a, err := Of(item{"spa", 10})
	require.NoError(t, err)
	b, err := Of(item{"spa", 10})
	require.NoError(t, err)
	c, err := Of(item{"spa", 11})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = Of(make(chan int))
	assert.Error(t, err)
}
