package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script (one-shot execution)",
	Long: `Evaluate JavaScript in a fresh engine instance.

Code can be provided via:
  - File argument: quix run script.js
  - Inline flag: quix run -c '6 * 7'
  - Stdin: echo '6 * 7' | quix run`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "Code to evaluate")
}

func readSource(cmd *cobra.Command, args []string) (source, filename string, ok bool) {
	code, _ := cmd.Flags().GetString("code")

	switch {
	case code != "":
		return code, "<input>", true
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return string(data), args[0], true
	default:
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return "", "", false
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(data) == 0 {
			return "", "", false
		}
		return string(data), "<stdin>", true
	}
}

func runRun(cmd *cobra.Command, args []string) {
	source, filename, ok := readSource(cmd, args)
	if !ok {
		cmd.Help()
		return
	}

	rt, err := newRuntimeForCmd(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	ctx, err := rt.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	result, err := evaluate(ctx, source, filename, evalFlag(cmd))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if result != "" && result != "undefined" {
		fmt.Println(result)
	}
}
