package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quixjs/quix/vm"
)

var rootCmd = &cobra.Command{
	Use:   "quix [file]",
	Short: "QuickJS-on-WASM JavaScript runner",
	Long: `quix - Run JavaScript in an embedded QuickJS engine hosted via WebAssembly.

Run code from files, inline strings, or stdin. Each invocation gets an
isolated engine instance; there is no access to the host beyond console
output.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun, // Default to run command behavior
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log engine diagnostics")
	rootCmd.PersistentFlags().String("memory", "", "Engine memory limit: 16mb, 64mb, 256mb")
	rootCmd.PersistentFlags().Bool("strict", false, "Evaluate in strict mode")

	// Add run-specific flags to root (for default command)
	addRunFlags(rootCmd)
}

func buildLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newRuntimeForCmd(cmd *cobra.Command) (*vm.Runtime, error) {
	return vm.NewRuntime(runtimeOptions(cmd)...)
}

func runtimeOptions(cmd *cobra.Command) []vm.Option {
	opts := []vm.Option{
		vm.WithLogger(buildLogger(cmd)),
		vm.WithConsole(func(s string) { fmt.Print(s) }),
	}
	if memory, _ := cmd.Flags().GetString("memory"); memory != "" {
		if pages := parseMemoryLimit(memory); pages > 0 {
			opts = append(opts, vm.WithMemoryLimit(pages))
		}
	}
	return opts
}

func parseMemoryLimit(s string) uint32 {
	switch s {
	case "16mb":
		return vm.MemoryLimit16MB
	case "64mb":
		return vm.MemoryLimit64MB
	case "256mb":
		return vm.MemoryLimit256MB
	default:
		return 0
	}
}

func evalFlag(cmd *cobra.Command) vm.EvalFlag {
	flag := vm.EvalGlobal
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		flag |= vm.EvalStrict
	}
	return flag
}

// evaluate runs one source unit and returns the result's string form. A
// script exception comes back as *vm.EvalError.
func evaluate(ctx *vm.Context, src, filename string, flag vm.EvalFlag) (string, error) {
	result, err := ctx.Eval(src, filename, flag)
	if err != nil {
		return "", err
	}

	if result.IsException() {
		exc, err := ctx.Exception()
		if err != nil {
			return "", err
		}
		defer exc.Release()
		cs, err := ctx.ToCString(exc)
		if err != nil {
			return "", err
		}
		msg := cs.String()
		cs.Release()
		return "", &vm.EvalError{Message: msg}
	}

	cs, err := ctx.ToCString(result)
	if err != nil {
		result.Release()
		return "", err
	}
	text := cs.String()
	cs.Release()
	if err := result.Release(); err != nil {
		return "", err
	}
	return text, nil
}
