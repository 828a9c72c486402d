package clip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopy(t *testing.T) {
	var got []string
	orig := Writer
	Writer = func(s string) error {
		got = append(got, s)
		return nil
	}
	t.Cleanup(func() { Writer = orig })

	require.NoError(t, Copy("  gam info domain \n"))
	assert.Equal(t, []string{"  gam info domain \n"}, got)

	assert.ErrorIs(t, Copy(" \t"), ErrNothingToCopy)
	assert.Len(t, got, 1)
}
