package vm_test

import (
	"errors"
	"math"
	"testing"

	"github.com/quixjs/quix/vm"
)

func TestPropertyRoundtrip(t *testing.T) {
	ctx := newTestContext(t)

	for _, v := range []int32{0, 1, -1, 42, math.MaxInt32, math.MinInt32} {
		global, err := ctx.GlobalObject()
		if err != nil {
			t.Fatalf("GlobalObject: %v", err)
		}

		val, err := ctx.NewInt32(v)
		if err != nil {
			t.Fatalf("NewInt32(%d): %v", v, err)
		}
		if err := ctx.SetProperty(global, "x", val); err != nil {
			t.Fatalf("SetProperty(%d): %v", v, err)
		}

		got, err := ctx.GetProperty(global, "x")
		if err != nil {
			t.Fatalf("GetProperty: %v", err)
		}
		n, err := ctx.ToInt32(got)
		if err != nil {
			t.Fatalf("ToInt32: %v", err)
		}
		if n != v {
			t.Errorf("roundtrip of %d returned %d", v, n)
		}

		if err := got.Release(); err != nil {
			t.Fatalf("release got: %v", err)
		}
		if err := global.Release(); err != nil {
			t.Fatalf("release global: %v", err)
		}
	}
}

func TestGetPropertyAbsent(t *testing.T) {
	ctx := newTestContext(t)

	global, err := ctx.GlobalObject()
	if err != nil {
		t.Fatalf("GlobalObject: %v", err)
	}
	defer global.Release()

	val, err := ctx.GetProperty(global, "definitely_not_defined")
	if err != nil {
		t.Fatalf("GetProperty on absent name: %v", err)
	}
	defer val.Release()

	if val.IsException() {
		t.Error("absent property returned exception marker")
	}
	cs, err := ctx.ToCString(val)
	if err != nil {
		t.Fatalf("ToCString: %v", err)
	}
	defer cs.Release()
	if cs.String() != "undefined" {
		t.Errorf("absent property stringifies to %q, want %q", cs.String(), "undefined")
	}
}

func TestNumericStringCoercion(t *testing.T) {
	ctx := newTestContext(t)

	val, err := ctx.NewInt32(6)
	if err != nil {
		t.Fatalf("NewInt32: %v", err)
	}
	defer val.Release()

	cs, err := ctx.ToCString(val)
	if err != nil {
		t.Fatalf("ToCString: %v", err)
	}
	defer cs.Release()

	if cs.String() != "6" {
		t.Errorf("ToCString(6) = %q, want %q", cs.String(), "6")
	}
}

func TestConstructorsCheckContext(t *testing.T) {
	ctx, err := sharedRT.NewContext()
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	checks := []struct {
		name string
		call func() error
	}{
		{"NewInt32", func() error { _, err := ctx.NewInt32(1); return err }},
		{"NewInt64", func() error { _, err := ctx.NewInt64(1); return err }},
		{"NewUint32", func() error { _, err := ctx.NewUint32(1); return err }},
		{"NewBigInt64", func() error { _, err := ctx.NewBigInt64(1); return err }},
		{"NewBigUint64", func() error { _, err := ctx.NewBigUint64(1); return err }},
		{"NewFloat64", func() error { _, err := ctx.NewFloat64(1); return err }},
	}
	for _, check := range checks {
		if err := check.call(); !errors.Is(err, vm.ErrInvalidHandle) {
			t.Errorf("%s on closed context = %v, want ErrInvalidHandle", check.name, err)
		}
	}
}

func TestSetPropertyTransfersOwnership(t *testing.T) {
	ctx := newTestContext(t)

	global, err := ctx.GlobalObject()
	if err != nil {
		t.Fatalf("GlobalObject: %v", err)
	}
	defer global.Release()

	val, err := ctx.NewInt32(7)
	if err != nil {
		t.Fatalf("NewInt32: %v", err)
	}
	if err := ctx.SetProperty(global, "moved", val); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	// The property slot owns the value now; releasing the moved-from
	// handle must be reported, not forwarded to the engine.
	if err := val.Release(); !errors.Is(err, vm.ErrDoubleRelease) {
		t.Errorf("Release after transfer = %v, want ErrDoubleRelease", err)
	}

	if got := readGlobalInt32(t, ctx, "moved"); got != 7 {
		t.Errorf("moved = %d, want 7", got)
	}
}

func TestNativeFunctionGreet(t *testing.T) {
	ctx := newTestContext(t)

	calls := 0
	greet, err := ctx.NewFunction("greet", 0, func(ctx *vm.Context, this *vm.Value, args []*vm.Value) *vm.Value {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("NewFunction: %v", err)
	}

	global, err := ctx.GlobalObject()
	if err != nil {
		t.Fatalf("GlobalObject: %v", err)
	}
	defer global.Release()
	if err := ctx.SetProperty(global, "greet", greet); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	if err := vm.TryEval(ctx, `greet(); var after = 5;`); err != nil {
		t.Fatalf("TryEval: %v", err)
	}

	if calls != 1 {
		t.Errorf("greet called %d times, want 1", calls)
	}
	// The script continues executing after the native call.
	if got := readGlobalInt32(t, ctx, "after"); got != 5 {
		t.Errorf("after = %d, want 5", got)
	}
}

func TestNativeFunctionArgumentsAndResult(t *testing.T) {
	ctx := newTestContext(t)

	double, err := ctx.NewFunction("double", 1, func(ctx *vm.Context, this *vm.Value, args []*vm.Value) *vm.Value {
		if len(args) != 1 {
			return nil
		}
		n, err := ctx.ToInt32(args[0])
		if err != nil {
			return nil
		}
		result, err := ctx.NewInt32(n * 2)
		if err != nil {
			return nil
		}
		return result
	})
	if err != nil {
		t.Fatalf("NewFunction: %v", err)
	}

	global, err := ctx.GlobalObject()
	if err != nil {
		t.Fatalf("GlobalObject: %v", err)
	}
	defer global.Release()
	if err := ctx.SetProperty(global, "double", double); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	if err := vm.TryEval(ctx, `var r = double(21);`); err != nil {
		t.Fatalf("TryEval: %v", err)
	}
	if got := readGlobalInt32(t, ctx, "r"); got != 42 {
		t.Errorf("r = %d, want 42", got)
	}
}

func TestThrowFromNativeFunction(t *testing.T) {
	ctx := newTestContext(t)

	boom, err := ctx.NewFunction("boom", 0, func(ctx *vm.Context, this *vm.Value, args []*vm.Value) *vm.Value {
		val, err := ctx.NewInt32(13)
		if err != nil {
			return nil
		}
		marker, err := ctx.Throw(val)
		if err != nil {
			return nil
		}
		return marker
	})
	if err != nil {
		t.Fatalf("NewFunction: %v", err)
	}

	global, err := ctx.GlobalObject()
	if err != nil {
		t.Fatalf("GlobalObject: %v", err)
	}
	defer global.Release()
	if err := ctx.SetProperty(global, "boom", boom); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}

	if err := vm.TryEval(ctx, `var caught = 0; try { boom(); } catch (e) { caught = e; }`); err != nil {
		t.Fatalf("TryEval: %v", err)
	}
	if got := readGlobalInt32(t, ctx, "caught"); got != 13 {
		t.Errorf("caught = %d, want 13", got)
	}
}

func TestForeignValueRejected(t *testing.T) {
	ctxA := newTestContext(t)
	ctxB := newTestContext(t)

	val, err := ctxA.NewInt32(1)
	if err != nil {
		t.Fatalf("NewInt32: %v", err)
	}
	defer val.Release()

	if _, err := ctxB.ToInt32(val); !errors.Is(err, vm.ErrInvalidHandle) {
		t.Errorf("ToInt32 with foreign value = %v, want ErrInvalidHandle", err)
	}
}
