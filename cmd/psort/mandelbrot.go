package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pingcap/talentplan/tidb/psort/mandelbrot"
)

func newMandelbrotCmd() *cobra.Command {
	var (
		width, height int
		workers       int
		maxIter       int
		bins          int
	)
	cmd := &cobra.Command{
		Use:   "mandelbrot",
		Short: "Render an escape-time grid row by row on a worker cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := mandelbrot.DefaultFrame(width, height)
			f.MaxIter = maxIter

			cluster := mandelbrot.NewCluster(workers)
			defer cluster.Shutdown()
			grid, err := cluster.Render(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%dx%d on %d workers, checksum %016x\n", width, height, cluster.NWorkers(), grid.Checksum())
			for i, count := range grid.Histogram(bins) {
				fmt.Fprintf(cmd.OutOrStdout(), "bin %2d: %d\n", i, count)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 640, "grid width")
	cmd.Flags().IntVar(&height, "height", 480, "grid height")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of workers (0 means NumCPU)")
	cmd.Flags().IntVar(&maxIter, "max-iter", mandelbrot.DefaultMaxIter, "iteration cap")
	cmd.Flags().IntVar(&bins, "bins", 8, "histogram bins")
	return cmd
}
