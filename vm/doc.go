// Package vm provides the binding layer over the embedded JavaScript
// engine: runtimes, execution contexts, value handles, and native function
// registration.
//
// # Overview
//
// A [Runtime] hosts one engine instance inside a WASM module. Contexts are
// created from a Runtime, evaluate source text, and hand out [Value] and
// [CString] handles. Every handle follows strict ownership: release it
// exactly once, before the Context that produced it, which in turn is closed
// before its Runtime.
//
// # Basic Usage
//
//	rt, err := vm.NewRuntime()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	ctx, err := rt.NewContext()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	if err := vm.TryEval(ctx, `var answer; answer = (x => y => x*y)(6)(7);`); err != nil {
//	    log.Fatal(err)
//	}
//
//	global, _ := ctx.GlobalObject()
//	defer global.Release()
//	answer, _ := ctx.GetProperty(global, "answer")
//	defer answer.Release()
//	n, _ := ctx.ToInt32(answer) // 42
//
// # Native Functions
//
//	greet, _ := ctx.NewFunction("greet", 0, func(ctx *vm.Context, this *vm.Value, args []*vm.Value) *vm.Value {
//	    fmt.Println("hello from Go")
//	    return nil
//	})
//	ctx.SetProperty(global, "greet", greet) // transfers ownership of greet
//	vm.TryEval(ctx, `greet();`)
//
// # Ownership Transfer
//
// [Context.SetProperty] and [Context.Throw] consume their Value argument:
// the engine takes ownership, the wrapper marks the handle released, and a
// later Release reports [ErrDoubleRelease]. Evaluation results that
// represent exceptions are detected with [Value.IsException] before use.
//
// Runtimes and contexts are single-threaded. Nothing here locks; sharing a
// Runtime across goroutines needs external synchronization.
package vm
