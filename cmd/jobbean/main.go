package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/chosen1st/sqoop/config"
)

const usage = `jobbean: transcode Sqoop jobs to and from JSON envelopes

Usage: jobbean [-config file] <command> [arguments]

Commands:
  inspect <file>            restore an envelope file and list its jobs
  import [-keep-ids] <file> save every job of an envelope file into the store
  export [-sensitive] [id...]
                            print stored jobs as an envelope (all when no id)
  publish <file> [queue]    publish the jobs of an envelope file
  consume [queue]           save the jobs of every consumed envelope
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("jobbean", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		fmt.Fprintln(stderr, "\nOptions:")
		flags.PrintDefaults()
	}
	configPath := flags.String("config", os.Getenv("JOBBEAN_CONFIG"), "path to a YAML configuration file")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return 1
		}
		cfg = loaded
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	logger = logger.With("run", uuid.NewString())

	a, err := newApp(cfg, logger, stdout)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer a.close()

	ctx, cancel := withSignals(context.Background())
	defer cancel()

	if err := a.dispatch(ctx, flags.Arg(0), flags.Args()[1:]); err != nil {
		if err == errUsage {
			flags.Usage()
			return 2
		}
		logger.Error("Command failed", "command", flags.Arg(0), "error", err)
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}
