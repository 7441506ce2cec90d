package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintBuildDataDefaults(t *testing.T) {
	var buf bytes.Buffer
	PrintBuildData(&buf)

	out := buf.String()
	require.Contains(t, out, "Build version: N/A")
	require.Contains(t, out, "Build date: N/A")
	require.Contains(t, out, "Build commit: N/A")
}
