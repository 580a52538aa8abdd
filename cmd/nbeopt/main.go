package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/corefn-dev/nbeopt/internal/coreir"
	"github.com/corefn-dev/nbeopt/internal/diagnostics"
	"github.com/corefn-dev/nbeopt/internal/directive"
	"github.com/corefn-dev/nbeopt/internal/nbe"
	"github.com/corefn-dev/nbeopt/internal/semantics"
	"github.com/corefn-dev/nbeopt/internal/wire"
)

var (
	// Version info - set by ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	command := flag.Arg(0)

	switch command {
	case "optimize":
		optimizeCmd(flag.Args()[1:])

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command '%s'\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func optimizeCmd(args []string) {
	fs := flag.NewFlagSet("optimize", flag.ExitOnError)
	directivesPath := fs.String("directives", "", "Path to a YAML inlining-directives file")
	outPath := fs.String("out", "", "Write the optimized IR here instead of stdout")
	maxIters := fs.Int("max-iters", 0, "Maximum fixed-point iterations before giving up (0 uses the built-in default)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: missing input file\n", red("Error"))
		fmt.Println("Usage: nbeopt optimize <ir.json> [--directives file.yaml] [--out out.json] [--max-iters n]")
		os.Exit(1)
	}

	input, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read file '%s': %v\n", red("Error"), fs.Arg(0), err)
		os.Exit(1)
	}

	module, err := wire.DecodeModule(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	directives, err := loadDirectives(*directivesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "%s optimizing %s...\n", cyan("→"), bold(string(module.Name)))

	result, ok := runOptimize(module, directives, *maxIters)
	if !ok {
		os.Exit(1)
	}

	frozen, analysis := nbe.Freeze(result)
	payload := map[string]any{
		"module": string(module.Name),
		"expr":   wire.EncodeNeutral(frozen),
		"size":   analysis.Size,
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: encoding result: %v\n", red("Error"), err)
		os.Exit(1)
	}

	if *outPath == "" {
		fmt.Println(string(out))
		return
	}
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: writing '%s': %v\n", red("Error"), *outPath, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s wrote %s\n", green("✓"), *outPath)
}

// runOptimize calls nbe.Optimize, recovering the structured report a
// fixed-point or quoting failure panics with so the CLI can print it as
// JSON on stderr instead of a Go stack trace.
func runOptimize(module *wire.Module, directives map[directive.EvalRef]directive.InlineDirective, maxIters int) (result coreir.Expr, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			printFailure(r)
		}
	}()
	evalExtern := module.Table.ResolveFunc(nbe.Eval, module.Name, directives)
	env := semantics.NewEnv(module.Name, evalExtern)
	result = nbe.Optimize(env, module.Expr, directives, maxIters)
	return result, true
}

func printFailure(r any) {
	if err, isErr := r.(error); isErr {
		if report, isReport := diagnostics.AsReport(err); isReport {
			text, jsonErr := report.ToJSON()
			if jsonErr == nil {
				fmt.Fprintf(os.Stderr, "%s %s\n", red(report.Code), report.Message)
				fmt.Fprintln(os.Stderr, text)
				return
			}
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), r)
}

func loadDirectives(path string) (map[directive.EvalRef]directive.InlineDirective, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read directives file '%s': %w", path, err)
	}
	return wire.DecodeDirectives(data)
}

func printVersion() {
	fmt.Printf("nbeopt %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
	fmt.Println("\nA normalization-by-evaluation optimizer for a pure, strict functional IR")
}

func printHelp() {
	fmt.Println(bold("nbeopt - normalization-by-evaluation IR optimizer"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  nbeopt <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <ir.json>   Run the fixed-point optimizer over an IR module\n", cyan("optimize"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version            Print version information")
	fmt.Println("  --help               Show this help message")
	fmt.Println("  --directives <file>  YAML file overriding extern inlining decisions")
	fmt.Println("  --out <file>         Write the optimized IR to a file")
	fmt.Println("  --max-iters <n>      Cap fixed-point iterations (0 uses the built-in default)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %s\n", cyan("nbeopt optimize module.json --out module.opt.json"))
}
