package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "psort",
		Short:         "Parallel rank-merge sort and row-parallel rendering",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	root.AddCommand(newSortCmd(), newBenchCmd(), newMandelbrotCmd())
	return root
}

func main() {
	// glog refuses to log before the go flag set is parsed; cobra parses the
	// values through pflag.
	if err := flag.CommandLine.Parse([]string{}); err != nil {
		glog.Exitf("psort: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		glog.Errorf("psort: %+v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
