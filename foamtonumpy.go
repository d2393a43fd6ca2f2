package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/phil-mansfield/foamtonumpy/lib"
	g_error "github.com/phil-mansfield/foamtonumpy/lib/error"
	"github.com/phil-mansfield/foamtonumpy/lib/flat"
	"github.com/phil-mansfield/foamtonumpy/lib/foamio"
	"github.com/phil-mansfield/foamtonumpy/lib/format"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		g_error.External("%s", err.Error())
	}
}

// run parses the command line arguments (not including the program name)
// and converts every selected time step. Progress messages are written to
// stdout.
func run(argv []string, stdout io.Writer) error {
	// Parse arguments.
	configFile, cmdArgs, err := lib.ParseCommandLine(argv)
	if err == flag.ErrHelp {
		lib.PrintUsage(stdout)
		return nil
	} else if err != nil {
		return err
	}

	rawArgs := lib.DefaultRawArgs()
	if configFile != "" {
		if rawArgs, err = lib.ParseConfigFile(configFile); err != nil {
			return err
		}
	}
	rawArgs.Overwrite(cmdArgs)

	// Do processing that doesn't need external validation.
	args, err := rawArgs.Process()
	if err != nil {
		return err
	}
	if err := lib.Check(args); err != nil {
		return err
	}

	return Convert(args, log.New(stdout, "", 0))
}

// Convert selects time steps from the case described by args and writes
// their flattened U and cellC fields to args.OutDir.
func Convert(args *lib.Args, logger *log.Logger) error {
	c := foamio.NewCase(args.Case, args.Region)

	times, err := c.Times()
	if err != nil {
		return err
	}
	sel, err := format.Select(args.Time, times, args.LatestTime, args.NoZero)
	if err != nil {
		return err
	}

	opts := flat.Options{OutDir: args.OutDir, WriteCellCentres: args.WriteCellC}
	return flat.Run(c, sel, opts, logger)
}
