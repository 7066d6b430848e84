// Command chi is the chigraph CLI: compile, run, and interpret workspace
// modules, and load a named module from the workspace's own module files
// (nothing is fetched from a remote source). Grounded on the
// teacher's `cmd/execute.go`: the same olive.NewCLI/AddSubcommand/ParseArgs
// shape, the same switch-on-subcommand-name dispatch, diagnostics reported
// through the same banner style (here diagdisplay.Render in place of the
// teacher's logging package).
package main

import (
	"fmt"
	"os"

	"github.com/ComedicChimera/olive"

	"chigraph/chictx"
	"chigraph/common"
	"chigraph/diagdisplay"
	"chigraph/interp"
	"chigraph/irsink"
	"chigraph/jsonmod"
	"chigraph/modcompile"
	"chigraph/result"
)

func main() {
	cli := olive.NewCLI("chi", "chi builds and runs chigraph workspaces", true)
	cli.AddStringArg("dir", "C", "the workspace directory to operate in (default: current directory)", false)

	compileCmd := cli.AddSubcommand("compile", "compile every module in the workspace", true)
	compileCmd.AddFlag("no-cache", "nc", "ignore the module cache and recompile everything")

	runCmd := cli.AddSubcommand("run", "compile and interpret a function", true)
	runCmd.AddPrimaryArg("function", "the mangled name of the function to run (module.function)", true)
	runCmd.AddStringArg("opt", "O", "interpreter optimization level", false)

	interpretCmd := cli.AddSubcommand("interpret", "interpret an already-compiled module without recompiling", true)
	interpretCmd.AddPrimaryArg("function", "the mangled name of the function to run (module.function)", true)

	getCmd := cli.AddSubcommand("get", "load a module from the workspace's module files", true)
	getCmd.AddPrimaryArg("module", "the full name of the module to fetch", true)

	cli.AddSubcommand("version", "print the chigraph version", false)

	parsed, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "usage error:", err)
		os.Exit(1)
	}

	dir := "."
	if v, ok := parsed.Arguments["dir"]; ok {
		dir = v.(string)
	}

	subcmdName, subResult, _ := parsed.Subcommand()
	switch subcmdName {
	case "compile":
		runCompile(dir, subResult)
	case "run":
		runRun(dir, subResult)
	case "interpret":
		runInterpret(dir, subResult)
	case "get":
		runGet(dir, subResult)
	case "version":
		fmt.Println("chi", common.ChigraphVersion)
	}
}

func loadWorkspace(dir string) (*chictx.Context, *result.Result) {
	sink := irsink.NewLLVMSink()
	ctx, res := chictx.NewFromChildPath(dir, sink)
	if !res.Success() {
		return nil, res
	}

	entries, err := os.ReadDir(ctx.WorkspaceRoot)
	if err != nil {
		res.AddEntry(result.CodeIOError, err.Error(), nil)
		return nil, res
	}

	source := jsonmod.FileSource{Root: ctx.WorkspaceRoot}
	decoder := jsonmod.Decoder{}

	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == common.WorkspaceConfigFile {
			continue
		}
		if len(entry.Name()) <= len(common.ModuleFileExtension) {
			continue
		}
		ext := entry.Name()[len(entry.Name())-len(common.ModuleFileExtension):]
		if ext != common.ModuleFileExtension {
			continue
		}

		fullName := entry.Name()[:len(entry.Name())-len(common.ModuleFileExtension)]
		_, loadRes := ctx.LoadModule(fullName, source, decoder)
		res.Merge(loadRes)
	}

	return ctx, res
}

func runCompile(dir string, subResult *olive.ArgParseResult) {
	ctx, res := loadWorkspace(dir)
	if ctx == nil {
		diagdisplay.Render(res, os.Stderr)
		os.Exit(1)
	}

	settings := chictx.CompileSettings{UseCache: !subResult.HasFlag("no-cache"), LinkDependencies: true}
	for _, name := range ctx.Modules() {
		res.Merge(ctx.CompileModule(name, settings, modcompile.CompileModule))
	}

	diagdisplay.Render(res, os.Stdout)
	if !res.Success() {
		os.Exit(1)
	}
}

func runRun(dir string, subResult *olive.ArgParseResult) {
	ctx, res := loadWorkspace(dir)
	if ctx == nil {
		diagdisplay.Render(res, os.Stderr)
		os.Exit(1)
	}

	settings := chictx.CompileSettings{UseCache: true, LinkDependencies: true}
	for _, name := range ctx.Modules() {
		res.Merge(ctx.CompileModule(name, settings, modcompile.CompileModule))
	}

	if !res.Success() {
		diagdisplay.Render(res, os.Stderr)
		os.Exit(1)
	}

	functionName, _ := subResult.PrimaryArg()
	sink, ok := ctx.Sink().(*irsink.LLVMSink)
	if !ok {
		fmt.Fprintln(os.Stderr, "run requires the LLVM sink backend")
		os.Exit(1)
	}

	code, runRes := interp.Interpret(sink, 0, nil, functionName)
	diagdisplay.Render(runRes, os.Stdout)
	os.Exit(code)
}

func runInterpret(dir string, subResult *olive.ArgParseResult) {
	ctx, res := loadWorkspace(dir)
	if ctx == nil {
		diagdisplay.Render(res, os.Stderr)
		os.Exit(1)
	}
	if !res.Success() {
		diagdisplay.Render(res, os.Stderr)
		os.Exit(1)
	}

	functionName, _ := subResult.PrimaryArg()
	sink, ok := ctx.Sink().(*irsink.LLVMSink)
	if !ok {
		fmt.Fprintln(os.Stderr, "interpret requires the LLVM sink backend")
		os.Exit(1)
	}

	code, runRes := interp.Interpret(sink, 0, nil, functionName)
	diagdisplay.Render(runRes, os.Stdout)
	os.Exit(code)
}

func runGet(dir string, subResult *olive.ArgParseResult) {
	ctx, res := loadWorkspace(dir)
	if ctx == nil {
		diagdisplay.Render(res, os.Stderr)
		os.Exit(1)
	}

	moduleName, _ := subResult.PrimaryArg()
	source := jsonmod.FileSource{Root: ctx.WorkspaceRoot}
	_, loadRes := ctx.LoadModule(moduleName, source, jsonmod.Decoder{})
	diagdisplay.Render(loadRes, os.Stdout)
	if !loadRes.Success() {
		os.Exit(1)
	}
}
