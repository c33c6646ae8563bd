package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webbuild/cmd/webbuild/commands"
	berrors "git.home.luguber.info/inful/webbuild/internal/errors"
	"git.home.luguber.info/inful/webbuild/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitRequest carries a status code from kong's exit hook (--help, --version)
// back to run.
type exitRequest int

// run parses args, executes the selected command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) (code int) {
	cli := &commands.CLI{Stdout: stdout, Stderr: stderr}
	parser, err := kong.New(cli,
		kong.Name("webbuild"),
		kong.Description("Mirror a source tree into a static site with directory listings."),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitRequest(c)) }),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 10
	}

	defer func() {
		if r := recover(); r != nil {
			req, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}
			code = int(req)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintln(stdout, berrors.InvalidArgument(fmt.Sprint(args)).Message)
		return 1
	}

	adapter := berrors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	return adapter.Report(stderr, kctx.Run(&commands.Global{Logger: slog.Default()}, cli))
}
