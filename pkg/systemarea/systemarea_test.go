package systemarea

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	var sa SystemArea
	require.True(t, sa.IsEmpty())
	sa[100] = 1
	require.False(t, sa.IsEmpty())
}
