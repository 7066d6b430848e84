// Package modcompile implements compileModule (spec 4.5/4.8): lowering
// every function of one GraphModule into a Sink, plus CompileWorkspace,
// which batches an entire Context's loaded modules by dependency depth and
// compiles each batch's modules concurrently. Grounded on the teacher's
// `build.Compiler.Analyze`/`createResolutionBatches` (`build/compiler.go`):
// the same "group independent units by dependency depth, fan out with
// goroutines within a depth, join before the next depth" shape, generalized
// from Chai packages to chigraph modules.
package modcompile

import (
	"fmt"
	"sort"
	"sync"

	"chigraph/chictx"
	"chigraph/fncompile"
	"chigraph/graph"
	"chigraph/irsink"
	"chigraph/nodetype"
	"chigraph/result"
)

// CompileModule lowers every function declared in mod into sink
// sequentially. Functions are first all forward-declared and registered in
// cache (so self- and mutually-recursive call nodes resolve no matter which
// order bodies are subsequently lowered in, the same way a native compiler
// emits declarations before definitions), then each body is lowered in
// turn. cache is the compile session's shared per-compile cache (spec 4.5);
// CompileWorkspace fans multiple modules of one batch out across goroutines
// sharing the same cache, so it guards its own access.
func CompileModule(mod *graph.Module, sink irsink.Sink, cache *nodetype.CallCache) *result.Result {
	res := &result.Result{}

	names := make([]string, 0, len(mod.Functions))
	for name := range mod.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	compilers := make(map[string]*fncompile.Compiler, len(names))

	for _, name := range names {
		fn := mod.Functions[name]
		c := fncompile.New(fn, sink, cache)
		ires := c.Initialize(true)
		res.Merge(ires)
		if !ires.Success() {
			continue
		}
		compilers[name] = c
		cache.Register(mod.FullName+"."+name, c.BackendFunc())
	}

	if !res.Success() {
		return res
	}

	for _, name := range names {
		c, ok := compilers[name]
		if !ok {
			continue
		}
		cres := c.Compile()
		if !cres.Success() {
			res.AddEntry(result.CodeLoweringFailed, fmt.Sprintf("module %q: function %q failed to compile", mod.FullName, name), nil)
		}
		res.Merge(cres)
	}

	return res
}

// DependencyBatches groups ctx's loaded modules into successive batches:
// every module in a batch depends only on modules in earlier batches. A
// batch containing a dependency cycle (or a dependency on a module outside
// the loaded set) is flushed as-is rather than looping forever; compiling
// it will simply surface whatever missing-callee errors result.
func DependencyBatches(ctx *chictx.Context) [][]string {
	names := ctx.Modules()

	deps := make(map[string][]string, len(names))
	for _, name := range names {
		deps[name] = ctx.ModuleByFullName(name).Dependencies()
	}

	resolved := map[string]bool{}
	remaining := append([]string{}, names...)

	var batches [][]string
	for len(remaining) > 0 {
		var ready, notReady []string
		for _, name := range remaining {
			isReady := true
			for _, dep := range deps[name] {
				if !resolved[dep] {
					isReady = false
					break
				}
			}
			if isReady {
				ready = append(ready, name)
			} else {
				notReady = append(notReady, name)
			}
		}

		if len(ready) == 0 {
			ready = remaining
			notReady = nil
		}

		sort.Strings(ready)
		batches = append(batches, ready)
		for _, name := range ready {
			resolved[name] = true
		}
		remaining = notReady
	}

	return batches
}

// CompileWorkspace compiles every loaded module of ctx, batched by
// dependency depth: modules within a batch compile concurrently (spec
// section 5: "modules at the same dependency depth may be compiled in
// parallel"), joined before the next batch starts so every dependency is
// fully compiled and registered before any dependent module needs it.
func CompileWorkspace(ctx *chictx.Context, settings chictx.CompileSettings) *result.Result {
	res := &result.Result{}

	for _, batch := range DependencyBatches(ctx) {
		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			acc = &result.Result{}
		)

		for _, name := range batch {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				r := ctx.CompileModule(name, settings, CompileModule)
				mu.Lock()
				acc.Merge(r)
				mu.Unlock()
			}(name)
		}

		wg.Wait()
		res.Merge(acc)
	}

	return res
}
