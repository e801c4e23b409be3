// Command ftlcheck evaluates an eligibility scenario described in YAML and
// exits non-zero when the crew member may not fly it.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

const (
	exitEligible    = 0
	exitNotEligible = 1
	exitUsage       = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ftlcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	scenarioPath := fs.String("scenario", "", "path to a YAML scenario (defaults to the first argument)")
	noColor := fs.Bool("no-color", false, "disable coloured output")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *noColor {
		color.NoColor = true
	}

	path := *scenarioPath
	if path == "" && fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if path == "" {
		fmt.Fprintln(stderr, "usage: ftlcheck [-no-color] -scenario <file.yaml>")
		return exitUsage
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "open scenario: %v\n", err)
		return exitUsage
	}
	defer f.Close()

	sc, err := decodeScenario(f)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	out, err := evaluate(sc)
	if err != nil {
		fmt.Fprintf(stderr, "evaluate: %v\n", err)
		return exitUsage
	}

	render(stdout, out)
	if !out.verdict.Eligibility.Valid {
		return exitNotEligible
	}
	return exitEligible
}
