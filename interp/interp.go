// Package interp wraps interpretation of a compiled module's LLVM IR
// (spec: "wraps interpretation of the produced IR; opaque, as specified").
// Grounded on the same round-trip-through-a-temp-file shape as the
// teacher's `bootstrap/cmd/compiler.go`'s compileLLVMModule: write the
// module's textual form to disk, shell out to an external LLVM tool
// (`lli`, LLVM's interpreter/JIT driver, in place of the teacher's `llc`),
// and report the external tool's outcome back through a Result.
package interp

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"chigraph/irsink"
	"chigraph/result"
)

// Interpret runs functionName in sink's module under LLVM's interpreter,
// passing args as the interpreted program's argv and optLevel as `lli`'s
// -O. It returns the interpreted function's exit value and a Result
// describing any failure to invoke or run the interpreter.
func Interpret(sink *irsink.LLVMSink, optLevel int, args []string, functionName string) (int, *result.Result) {
	res := &result.Result{}

	interpreterPath, err := exec.LookPath("lli")
	if err != nil {
		res.AddEntry(result.CodeExternalToolFailed, "lli not found on PATH", nil)
		return 0, res
	}

	workDir, err := os.MkdirTemp("", "chigraph-interp-*")
	if err != nil {
		res.AddEntry(result.CodeExternalToolFailed, "failed to create temp directory for interpretation: "+err.Error(), nil)
		return 0, res
	}
	defer os.RemoveAll(workDir)

	modPath := filepath.Join(workDir, "module.ll")
	if err := os.WriteFile(modPath, []byte(sink.WriteString()), 0644); err != nil {
		res.AddEntry(result.CodeExternalToolFailed, "failed to write module for interpretation: "+err.Error(), nil)
		return 0, res
	}

	cmdArgs := []string{
		"-O" + strconv.Itoa(optLevel),
		"-entry-function=" + functionName,
		modPath,
	}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.Command(interpreterPath, cmdArgs...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err == nil {
		return 0, res
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), res
	}

	res.AddEntry(result.CodeExternalToolFailed, fmt.Sprintf("failed to run lli: %s\n%s", err, stderr.String()), nil)
	return 0, res
}
