/*
Stepparsesrv starts a small read-only telemetry HTTP surface over a StepParser
engine instance.

Usage:

	stepparsesrv [flags]
	stepparsesrv [flags] -l [[ADDRESS]:PORT]

Once started, the server listens for HTTP requests and answers them with
JSON telemetry: inheritance chains, resolved semantic actions, resolved
precedence/associativity, and arena pool stats. By default, it listens on
localhost:8080; change this with --listen/-l.

The flags are:

	-v, --version
		Give the current version of stepparsesrv and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, defaults to the value of environment variable
		STEPPARSE_LISTEN_ADDRESS, and if that is not given, to localhost:8080.

	-g, --grammar FILE
		Load the given grammar text file as the server's active grammar at
		startup. If not given, defaults to the value of environment variable
		STEPPARSE_GRAMMAR.

	-c, --config FILE
		Load engine tuning from the given TOML config file instead of the
		documented defaults.
*/
package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/dekarrin/stepparser/internal/stepparse/config"
	"github.com/dekarrin/stepparser/internal/stepparse/engine"
	"github.com/dekarrin/stepparser/internal/stepparse/grammar"
	"github.com/dekarrin/stepparser/internal/version"
)

const (
	EnvListen  = "STEPPARSE_LISTEN_ADDRESS"
	EnvGrammar = "STEPPARSE_GRAMMAR"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of stepparsesrv and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagGrammar = pflag.StringP("grammar", "g", "", "Load the given grammar text file at startup.")
	flagConfig  = pflag.StringP("config", "c", "", "Load engine tuning from the given TOML file.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (stepparser v%s)\n", version.ServerCurrent, version.Current)
		return
	}

	args := pflag.Args()
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	addr, port, err := resolveListenAddr()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		os.Exit(1)
	}

	cfg := config.Default()
	if *flagConfig != "" {
		data, rerr := os.ReadFile(*flagConfig)
		if rerr != nil {
			fmt.Fprintf(os.Stderr, "Could not read config file: %s\n", rerr.Error())
			os.Exit(1)
		}
		cfg, rerr = config.Load(data)
		if rerr != nil {
			fmt.Fprintf(os.Stderr, "Could not parse config file: %s\n", rerr.Error())
			os.Exit(1)
		}
	}

	sp := engine.New(cfg)

	grammarPath := os.Getenv(EnvGrammar)
	if pflag.Lookup("grammar").Changed {
		grammarPath = *flagGrammar
	}
	if grammarPath != "" {
		g, gerr := loadGrammar(grammarPath)
		if gerr != nil {
			fmt.Fprintf(os.Stderr, "Could not load grammar: %s\n", gerr.Error())
			os.Exit(1)
		}
		sp.SetActiveGrammar(g)
	}

	srv := newTelemetryServer(sp)

	listenAddr := fmt.Sprintf("%s:%d", addr, port)
	fmt.Printf("stepparsesrv %s listening on %s\n", version.ServerCurrent, listenAddr)
	if err := http.ListenAndServe(listenAddr, srv.router()); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", err.Error())
		os.Exit(2)
	}
}

func resolveListenAddr() (addr string, port int, err error) {
	addr, port = "localhost", 8080

	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr == "" {
		return addr, port, nil
	}

	bindParts := strings.SplitN(listenAddr, ":", 2)
	if len(bindParts) != 2 {
		return "", 0, fmt.Errorf("listen address is not in ADDRESS:PORT or :PORT format")
	}
	addr = bindParts[0]
	if addr == "" {
		addr = "localhost"
	}
	port, err = strconv.Atoi(bindParts[1])
	if err != nil {
		return "", 0, fmt.Errorf("%q is not a valid port number", bindParts[1])
	}
	return addr, port, nil
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
