package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleIsInvolution(t *testing.T) {
	for mode := uint32(0); mode <= 0o7777; mode++ {
		for _, c := range All() {
			flipped := Toggle(mode, c)
			require.NotEqual(t, mode, flipped)
			require.Equal(t, mode, Toggle(flipped, c), "mode %#o capability %s", mode, c)
			require.Equal(t, uint32(c), mode^flipped, "exactly one bit changes")
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		mode uint32
		want []Capability
		str  string
	}{
		{0o755, []Capability{UserRead, UserWrite, UserExecute, GroupRead, GroupExecute, OthersRead, OthersExec}, "rwxr-xr-x"},
		{0o640, []Capability{UserRead, UserWrite, GroupRead}, "rw-r-----"},
		{0o000, nil, "---------"},
		{0o4711, []Capability{UserRead, UserWrite, UserExecute, GroupExecute, OthersExec}, "rwx--x--x"},
	}

	for _, tt := range tests {
		set := Decode(tt.mode)
		assert.Equal(t, tt.want, set.List())
		assert.Equal(t, tt.str, set.String())
		assert.Equal(t, tt.mode&Mask, set.Mode())
	}
}

func TestToggleScenario(t *testing.T) {
	mode := uint32(0o644)

	mode = Toggle(mode, UserExecute)
	assert.Equal(t, uint32(0o744), mode)
	assert.True(t, Decode(mode).Has(UserExecute))

	mode = Toggle(mode, OthersRead)
	assert.Equal(t, uint32(0o740), mode)
	assert.False(t, Decode(mode).Has(OthersRead))
}

func TestCapabilityNames(t *testing.T) {
	assert.Len(t, All(), 9)
	for _, c := range All() {
		assert.True(t, c.Valid())
		parsed, err := ParseCapability(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	assert.Equal(t, "User Read", UserRead.Label())
	assert.Equal(t, "Others Execute", OthersExec.Label())
	assert.Equal(t, "groupWrite", GroupWrite.String())

	c, err := ParseCapability("GROUPEXECUTE")
	require.NoError(t, err)
	assert.Equal(t, GroupExecute, c)

	_, err = ParseCapability("sticky")
	assert.Error(t, err)
	assert.False(t, Capability(0o1000).Valid())
}
