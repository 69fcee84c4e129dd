package main

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pingcap/talentplan/tidb/psort/mergesort"
)

type sortFlags struct {
	workers     int
	sortCutoff  int
	mergeCutoff int
}

func (f *sortFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.sortCutoff, "sort-cutoff", mergesort.DefaultSortCutoff, "sort sequentially at or below this many elements")
	fs.IntVar(&f.mergeCutoff, "merge-cutoff", mergesort.DefaultMergeCutoff, "merge sequentially at or below this many elements")
}

func (f *sortFlags) options(workers int) []mergesort.Option {
	return []mergesort.Option{
		mergesort.WithWorkers(workers),
		mergesort.WithSortCutoff(f.sortCutoff),
		mergesort.WithMergeCutoff(f.mergeCutoff),
	}
}

func newSortCmd() *cobra.Command {
	var flags sortFlags
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort whitespace separated integers read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := readKeys(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := mergesort.SortContext(cmd.Context(), keys, flags.options(flags.workers)...); err != nil {
				return err
			}
			return writeKeys(cmd.OutOrStdout(), keys)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "number of pool workers (0 means GOMAXPROCS)")
	return cmd
}

func readKeys(r io.Reader) ([]int64, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var keys []int64
	for sc.Scan() {
		v, err := strconv.ParseInt(sc.Text(), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "key %d", len(keys))
		}
		keys = append(keys, v)
	}
	return keys, errors.Wrap(sc.Err(), "read keys")
}

func writeKeys(w io.Writer, keys []int64) error {
	buf := bufio.NewWriter(w)
	var scratch []byte
	for _, k := range keys {
		scratch = strconv.AppendInt(scratch[:0], k, 10)
		scratch = append(scratch, '\n')
		if _, err := buf.Write(scratch); err != nil {
			return errors.Wrap(err, "write keys")
		}
	}
	return errors.Wrap(buf.Flush(), "write keys")
}
