package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coldchip/eval/bytecode"
	"github.com/coldchip/eval/interp"
	"github.com/coldchip/eval/runtime"
	"github.com/urfave/cli/v3"
	"zombiezen.com/go/log"
)

func main() {
	signal.Ignore(syscall.SIGPIPE)

	app := &cli.Command{
		Name:  "chip",
		Usage: "run a Chip bytecode image",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "print each executed instruction",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "print per-instruction frame state (locals, stack)",
			},
			&cli.StringFlag{
				Name:  "trace",
				Usage: "trace calls and returns for `method`",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "print heap allocation statistics after execution",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("chip: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	initLogging(cmd.Bool("debug") || cmd.Bool("verbose") || cmd.String("trace") != "")

	if cmd.Args().Len() < 1 {
		return fmt.Errorf("missing image file\n\nusage: chip [options] <image-file>")
	}
	path := cmd.Args().First()

	prog, err := bytecode.Load(path)
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}

	if cmd.Bool("debug") {
		interp.PrintProgram(prog)
	}

	machine, err := runtime.NewMachine(prog)
	if err != nil {
		return fmt.Errorf("bootstrapping machine: %w", err)
	}

	ip := interp.New(machine)
	ip.Verbose = cmd.Bool("verbose")
	ip.Debug = cmd.Bool("debug")
	ip.TraceMethod = cmd.String("trace")

	if err := ip.Run(ctx); err != nil {
		return fmt.Errorf("execution error: %w", err)
	}

	if cmd.Bool("stats") {
		stats := machine.Heap.Stats()
		fmt.Println("---")
		fmt.Println("Heap Statistics:")
		fmt.Printf("  Allocations: %d\n", stats.AllocCount)
		fmt.Printf("  Variables:   %d\n", stats.Variables)
		fmt.Printf("  Functions:   %d\n", stats.Functions)
		fmt.Printf("  Arrays:      %d\n", stats.Arrays)
	}

	return nil
}

func initLogging(debug bool) {
	minLevel := log.Info
	if debug {
		minLevel = log.Debug
	}
	log.SetDefault(&log.LevelFilter{
		Min:    minLevel,
		Output: log.New(os.Stderr, "chip: ", log.StdFlags, nil),
	})
}
