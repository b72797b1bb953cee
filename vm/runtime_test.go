package vm_test

import (
	"errors"
	"testing"

	"github.com/quixjs/quix/vm"
)

func TestRuntimeCloseTwice(t *testing.T) {
	rt, err := vm.NewRuntime()
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := rt.Close(); !errors.Is(err, vm.ErrDoubleRelease) {
		t.Errorf("second Close = %v, want ErrDoubleRelease", err)
	}
}

func TestNewContextOnClosedRuntime(t *testing.T) {
	rt, err := vm.NewRuntime()
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := rt.NewContext(); !errors.Is(err, vm.ErrInvalidHandle) {
		t.Errorf("NewContext on closed runtime = %v, want ErrInvalidHandle", err)
	}
}

func TestContextCloseTwice(t *testing.T) {
	ctx, err := sharedRT.NewContext()
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := ctx.Close(); !errors.Is(err, vm.ErrDoubleRelease) {
		t.Errorf("second Close = %v, want ErrDoubleRelease", err)
	}
}

func TestRuntimesAreIsolated(t *testing.T) {
	rt, err := vm.NewRuntime()
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close()

	ctx, err := rt.NewContext()
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Close()

	if err := vm.TryEval(ctx, `var island = 1;`); err != nil {
		t.Fatalf("TryEval: %v", err)
	}

	// The shared runtime must not see globals from the private one.
	other := newTestContext(t)
	global, err := other.GlobalObject()
	if err != nil {
		t.Fatalf("GlobalObject: %v", err)
	}
	defer global.Release()
	val, err := other.GetProperty(global, "island")
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	defer val.Release()
	cs, err := other.ToCString(val)
	if err != nil {
		t.Fatalf("ToCString: %v", err)
	}
	defer cs.Release()
	if cs.String() != "undefined" {
		t.Errorf("global leaked across runtimes: island = %q", cs.String())
	}
}

func TestRuntimeWithMemoryLimit(t *testing.T) {
	rt, err := vm.NewRuntime(vm.WithMemoryLimit(vm.MemoryLimit64MB))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close()

	ctx, err := rt.NewContext()
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Close()

	if err := vm.TryEval(ctx, `var ok = 1;`); err != nil {
		t.Fatalf("TryEval under memory limit: %v", err)
	}
}

func TestConsoleOutput(t *testing.T) {
	var lines []string
	rt, err := vm.NewRuntime(vm.WithConsole(func(s string) { lines = append(lines, s) }))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close()

	ctx, err := rt.NewContext()
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Close()

	if err := vm.TryEval(ctx, `console.log("hello");`); err != nil {
		t.Fatalf("TryEval: %v", err)
	}
	if len(lines) == 0 {
		t.Fatal("console.log produced no output")
	}
}
