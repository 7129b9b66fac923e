package halofold

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	assert := require.New(t)
	assert.NoError(Version.Validate())

	// cached commitment keys embed the version and are rejected across
	// major bumps; a major bump here must be deliberate
	assert.EqualValues(0, Version.Major)
}

func TestCurves(t *testing.T) {
	require.Equal(t, []string{"bn254", "grumpkin"}, Curves())
}
