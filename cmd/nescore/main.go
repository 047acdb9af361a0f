// Command nescore is a headless CLI over the emulator core, exercising
// the exact programmatic API a language-binding shim would: open a ROM,
// step it for some number of frames, and optionally write out a save
// state. It has no window and no input devices — those are out of
// scope for the core library this binary wraps.
package main

import (
	"fmt"
	"os"

	"github.com/patchbay-retro/nescore/pkg/logger"
	"github.com/patchbay-retro/nescore/pkg/nes"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logFile  string
)

func main() {
	root := &cobra.Command{
		Use:   "nescore",
		Short: "Headless driver for the nescore emulation core",
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "off, error, warn, info, debug, trace")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (empty for stdout)")

	root.AddCommand(newRunCommand(), newTraceCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogging() error {
	level := map[string]logger.LogLevel{
		"off": logger.LogLevelOff, "error": logger.LogLevelError,
		"warn": logger.LogLevelWarn, "info": logger.LogLevelInfo,
		"debug": logger.LogLevelDebug, "trace": logger.LogLevelTrace,
	}[logLevel]
	return logger.Initialize(level, logFile)
}

func newRunCommand() *cobra.Command {
	var frames int
	var saveOut string
	var saveIn string

	cmd := &cobra.Command{
		Use:   "run <rom>",
		Short: "Load a ROM and step it for a number of frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := initLogging(); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			machine, err := nes.Open(f)
			if err != nil {
				return err
			}

			if saveIn != "" {
				buf, err := os.ReadFile(saveIn)
				if err != nil {
					return err
				}
				if err := machine.Load(buf); err != nil {
					return err
				}
			}

			machine.Step(frames)

			if machine.HasCrashed() {
				fmt.Fprintln(os.Stderr, "cpu crashed (KIL/JAM opcode)")
			}

			if saveOut != "" {
				return os.WriteFile(saveOut, machine.Save(), 0o644)
			}
			fmt.Printf("ran %d frames, crashed=%v\n", frames, machine.HasCrashed())
			return nil
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 60, "number of frames to step")
	cmd.Flags().StringVar(&saveOut, "save-out", "", "write a save state to this path after stepping")
	cmd.Flags().StringVar(&saveIn, "save-in", "", "load a save state from this path before stepping")
	return cmd
}

func newTraceCommand() *cobra.Command {
	var frames int

	cmd := &cobra.Command{
		Use:   "trace <rom>",
		Short: "Run at debug level with CPU logging on (interrupts and PPU address/data writes; no per-instruction log)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel = "debug"
			if err := initLogging(); err != nil {
				return err
			}
			logger.SetCPULogging(true)

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			machine, err := nes.Open(f)
			if err != nil {
				return err
			}

			machine.Step(frames)
			return nil
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 1, "number of frames to step")
	return cmd
}
