package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData_Defaults(t *testing.T) {
	var buf bytes.Buffer
	PrintBuildData(&buf)

	out := buf.String()
	assert.Contains(t, out, "Build version: N/A")
	assert.Contains(t, out, "Build date: N/A")
	assert.Contains(t, out, "Build commit: N/A")
}

func TestPrintBuildData_Injected(t *testing.T) {
	origVersion, origDate, origCommit := Version, Date, Commit
	t.Cleanup(func() { Version, Date, Commit = origVersion, origDate, origCommit })

	Version, Date, Commit = "v1.2.0", "2025-08-01", "abc1234"

	var buf bytes.Buffer
	PrintBuildData(&buf)

	out := buf.String()
	assert.Contains(t, out, "Build version: v1.2.0")
	assert.Contains(t, out, "Build date: 2025-08-01")
	assert.Contains(t, out, "Build commit: abc1234")
}
