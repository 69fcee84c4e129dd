package main

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"pingcap/talentplan/tidb/psort/forkjoin"
	"pingcap/talentplan/tidb/psort/mergesort"
)

const benchChunk = 1 << 16

func newBenchCmd() *cobra.Command {
	var (
		flags   sortFlags
		n       int
		seed    int64
		workers []int
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Sort the same random input with several pool sizes and check the outputs match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n < 0 {
				return errors.Errorf("invalid --n %d", n)
			}
			ctx := cmd.Context()
			input, err := randomKeys(ctx, n, seed)
			if err != nil {
				return err
			}

			expect := slices.Clone(input)
			start := time.Now()
			sort.SliceStable(expect, func(i, j int) bool { return expect[i] < expect[j] })
			glog.Infof("sort.SliceStable: %d keys in %v", n, time.Since(start))

			for _, w := range workers {
				got := slices.Clone(input)
				pool := forkjoin.New(w)
				start := time.Now()
				err := mergesort.SortContext(ctx, got, append(flags.options(w), mergesort.WithPool(pool))...)
				elapsed := time.Since(start)
				pool.Close()
				if err != nil {
					return err
				}
				st := pool.Stats()
				glog.Infof("mergesort workers=%d: %d keys in %v, forked=%d stolen=%d reclaimed=%d inline=%d",
					w, n, elapsed, st.Forked, st.Stolen, st.Reclaimed, st.Inline)
				if !slices.Equal(got, expect) {
					return errors.Errorf("output with %d workers differs from reference", w)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d keys sorted identically with workers %v\n", n, workers)
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().IntVar(&n, "n", 1<<20, "number of keys")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().IntSliceVar(&workers, "workers", []int{1, 2, 8}, "pool sizes to compare")
	return cmd
}

// randomKeys fills chunks concurrently, each from its own seeded source, so
// the result depends only on n and seed.
func randomKeys(ctx context.Context, n int, seed int64) ([]int64, error) {
	keys := make([]int64, n)
	g, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += benchChunk {
		chunk := keys[lo:min(lo+benchChunk, n)]
		src := rand.New(rand.NewSource(seed + int64(lo)))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := range chunk {
				chunk[i] = src.Int63()
			}
			return nil
		})
	}
	return keys, errors.Wrap(g.Wait(), "generate keys")
}
