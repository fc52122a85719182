/*
Stepparse starts an interactive step-parser session.

It loads a grammar from a CEBNF-flavored text file and reads lines of input
from stdin, tokenizing each line by whitespace and feeding the result through
the StepParser core one token at a time, printing the productions matched.

Usage:

	stepparse [flags]

The flags are:

	-v, --version
		Give the current version of stepparser and then exit.

	-g, --grammar FILE
		Use the provided grammar text file. Defaults to "grammar.txt" in the
		current working directory.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading input even if launched in a tty
		with stdin and stdout.

	-c, --config FILE
		Load engine tuning from the given TOML config file instead of the
		documented defaults.

Once a session has started, input lines are parsed against the loaded
grammar. Type "HELP" for the session's own command list, "QUIT" to exit.
*/
package main

import (
	"fmt"
	"os"

	stdctx "context"

	"github.com/spf13/pflag"

	"github.com/dekarrin/stepparser/internal/input"
	"github.com/dekarrin/stepparser/internal/stepparse/config"
	"github.com/dekarrin/stepparser/internal/stepparse/engine"
	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/version"
)

const (
	ExitSuccess = iota
	ExitInitError
	ExitSessionError
)

var (
	returnCode  = ExitSuccess
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	grammarFile = pflag.StringP("grammar", "g", "grammar.txt", "The grammar text file to load")
	forceDirect = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
	configFile  = pflag.StringP("config", "c", "", "Load engine tuning from the given TOML file instead of the documented defaults")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg := config.Default()
	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		cfg, err = config.Load(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	}

	g, err := loadGrammar(*grammarFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	sp := engine.New(cfg)
	sp.SetActiveGrammar(g)

	useReadline := !*forceDirect && isInteractiveStdio()
	var reader commandReader
	if useReadline {
		rl, rlErr := input.NewInteractiveReader()
		if rlErr != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", rlErr.Error())
			returnCode = ExitInitError
			return
		}
		reader = rl
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	defer reader.Close()

	if err := runSession(sp, g, reader); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitSessionError
	}
}

// commandReader is the subset of internal/input's two reader types this
// session needs.
type commandReader interface {
	ReadCommand() (string, error)
	Close() error
}

func loadGrammar(path string) (*grammar.Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := grammar.Parse(string(data), path)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func runSession(sp *engine.StepParser, g *grammar.Grammar, reader commandReader) error {
	fmt.Printf("stepparse %s — grammar %q loaded. Type HELP for commands.\n", version.Current, g.Name)

	for {
		line, err := reader.ReadCommand()
		if err != nil {
			return nil
		}

		switch {
		case line == "QUIT" || line == "quit":
			return nil
		case line == "HELP" || line == "help":
			printHelp()
		case line == "TRACE ON":
			sp.RegisterTraceListener(func(msg string) { fmt.Println("TRACE:", msg) })
		case line == "TRACE OFF":
			sp.RegisterTraceListener(nil)
		default:
			runParse(sp, g, line)
		}
	}
}

func printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  HELP        show this message")
	fmt.Println("  TRACE ON    enable per-step trace output")
	fmt.Println("  TRACE OFF   disable trace output")
	fmt.Println("  QUIT        exit the session")
	fmt.Println("Anything else is tokenized by whitespace and parsed against the loaded grammar.")
}

func runParse(sp *engine.StepParser, g *grammar.Grammar, line string) {
	stream := tokenizeLine(g, line)
	result, err := sp.Parse(stdctx.Background(), g.Name, stream)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		return
	}
	if len(result.Matches) == 0 {
		fmt.Println("(no matches)")
		return
	}
	for _, m := range result.Matches {
		fmt.Println(m.String())
	}
}
