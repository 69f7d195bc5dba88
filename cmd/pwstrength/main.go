package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"

	"github.com/jwalitptl/jobboard-api/pkg/strength"
)

const (
	exitOK       = 0
	exitBelowMin = 1
	exitUsage    = 2

	// longest stdin line accepted
	maxLineBytes = 1 << 20
)

// settings are read from PWSTRENGTH_* variables; flags take precedence
type settings struct {
	MinLevel string `envconfig:"MIN_LEVEL"`
	Meter    bool   `envconfig:"METER"`
}

type result struct {
	Line int `json:"line"`
	strength.Assessment
	Label    string          `json:"label"`
	Meter    *strength.Meter `json:"meter,omitempty"`
	MeetsMin *bool           `json:"meets_min,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var env settings
	if err := envconfig.Process("pwstrength", &env); err != nil {
		fmt.Fprintf(stderr, "read environment: %v\n", err)
		return exitUsage
	}

	fs := flag.NewFlagSet("pwstrength", flag.ContinueOnError)
	fs.SetOutput(stderr)
	minLevel := fs.String("min-level", env.MinLevel, "fail when any password is below this level (weak, medium, strong, very_strong)")
	withMeter := fs.Bool("meter", env.Meter, "include meter data in the output")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: pwstrength [-min-level level] [-meter] [password ...]")
		fmt.Fprintf(stderr, "reads one password per line from stdin when no arguments are given (lines up to %d bytes)\n", maxLineBytes)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	required := strength.LevelNone
	if *minLevel != "" {
		level, err := strength.ParseLevel(*minLevel)
		if err != nil {
			fmt.Fprintf(stderr, "invalid -min-level: %v\n", err)
			return exitUsage
		}
		required = level
	}

	enc := json.NewEncoder(stdout)
	code := exitOK
	line := 0

	evaluate := func(password string) error {
		line++
		a := strength.Evaluate(password)
		out := result{
			Line:       line,
			Assessment: a,
			Label:      a.Level.Label(),
		}
		if *withMeter {
			m := strength.NewMeter(a)
			out.Meter = &m
		}
		if required != strength.LevelNone {
			ok := a.Level.AtLeast(required)
			out.MeetsMin = &ok
			if !ok {
				code = exitBelowMin
			}
		}
		return enc.Encode(out)
	}

	if fs.NArg() > 0 {
		for _, password := range fs.Args() {
			if err := evaluate(password); err != nil {
				fmt.Fprintf(stderr, "write: %v\n", err)
				return exitUsage
			}
		}
		return code
	}

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if err := evaluate(scanner.Text()); err != nil {
			fmt.Fprintf(stderr, "write: %v\n", err)
			return exitUsage
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "read stdin: %v\n", err)
		return exitUsage
	}

	return code
}
