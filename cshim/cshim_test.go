package cshim

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCC(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"clang", "cc", "gcc"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("no C compiler found on PATH")
	return ""
}

func TestCompileCToIRSuccess(t *testing.T) {
	cc := findCC(t)

	mod, res := CompileCToIR(cc, nil, "int add(int a, int b) { return a + b; }\n")
	require.True(t, res.Success(), "%+v", res.Entries)
	require.NotNil(t, mod)
	assert.NotEmpty(t, mod.Funcs)
}

func TestCompileCToIRReportsSyntaxError(t *testing.T) {
	cc := findCC(t)

	_, res := CompileCToIR(cc, nil, "this is not valid C\n")
	assert.False(t, res.Success())
}
