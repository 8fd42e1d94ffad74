// firtool round-trips textual IR modules: it parses each input file,
// optionally runs the module verifier, and prints the canonical form.
//
// Usage:
//
//	firtool [flags] file.fir [file2.fir ...]
//
// Example:
//
//	firtool -o out.fir program.fir
//	firtool --verify=false --verbose broken.fir
package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fortgo/fortgo/fir"
)

var (
	flagVerify  bool
	flagVerbose bool
	flagOutput  string
)

func addFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&flagVerify, "verify", true, "run the module verifier after parsing")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&flagOutput, "output", "o", "", "write output to a file instead of stdout")
}

func main() {
	root := &cobra.Command{
		Use:          "firtool [flags] file.fir [file2.fir ...]",
		Short:        "Parse, verify, and reprint IR modules",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}
	addFlags(root.Flags())
	if err := root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	out := io.Writer(os.Stdout)
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	for _, filename := range args {
		if err := processFile(out, filename); err != nil {
			return err
		}
	}
	return nil
}

func processFile(out io.Writer, filename string) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	logrus.Debugf("parsing %s (%d bytes)", filename, len(src))

	m, err := fir.ParseModule(string(src))
	if err != nil {
		return errors.Wrap(err, filename)
	}
	if flagVerify {
		if err := fir.Verify(m); err != nil {
			return errors.Wrap(err, filename)
		}
		logrus.Debugf("%s: %d globals, %d functions verified",
			filename, len(m.Globals), len(m.Functions))
	}
	return fir.PrintModule(out, m)
}
