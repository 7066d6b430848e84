package diagdisplay

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"chigraph/result"
)

func TestRenderSuccessSummary(t *testing.T) {
	res := &result.Result{}

	var buf bytes.Buffer
	Render(res, &buf)

	out := buf.String()
	assert.Contains(t, out, "All done!")
	assert.Contains(t, out, "0 errors")
	assert.Contains(t, out, "0 warnings")
}

func TestRenderCountsErrorsAndWarnings(t *testing.T) {
	res := &result.Result{}
	res.AddEntry(result.CodeTypeMismatch, "data types disagree", map[string]string{"slot": "0"})
	res.AddEntry("W01", "unused local variable", nil)

	var buf bytes.Buffer
	Render(res, &buf)

	out := buf.String()
	assert.True(t, strings.Contains(out, "1 error"))
	assert.True(t, strings.Contains(out, "1 warning"))
	assert.Contains(t, out, "data types disagree")
	assert.Contains(t, out, "slot: 0")
}
