// Package quix provides CGO-free Go bindings for the QuickJS JavaScript
// engine, compiled to WebAssembly and hosted via wazero.
//
// # Overview
//
// quix embeds the engine as a WASM module, so there is no cgo, no shared
// library, and no system dependency. Each runtime is an isolated engine
// instance with its own heap.
//
// # Basic Usage
//
//	rt, _ := vm.NewRuntime()
//	defer rt.Close()
//
//	ctx, _ := rt.NewContext()
//	defer ctx.Close()
//
//	vm.TryEval(ctx, `var answer = 6 * 7;`)
//
//	global, _ := ctx.GlobalObject()
//	defer global.Release()
//	answer, _ := ctx.GetProperty(global, "answer")
//	defer answer.Release()
//	n, _ := ctx.ToInt32(answer)
//	fmt.Println(n) // 42
//
// See the [github.com/quixjs/quix/vm] package for the full API: value
// construction, property access, native function registration, and
// exception handling.
package quix
