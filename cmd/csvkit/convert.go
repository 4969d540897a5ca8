package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shapestone/csvcodec/pkg/csv"
)

func newConvertCommand(a *app) *cobra.Command {
	var appendMode bool

	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Rewrite a CSV file from the input dialect to the output dialect",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wopts, err := a.cfg.WriterOptions()
			if err != nil {
				return err
			}
			in, out := args[0], args[1]

			var rows int
			err = a.readInput(cmd, in, func(r *csv.Reader) error {
				return csv.OpenFile(out, appendMode, wopts, func(w *csv.Writer) error {
					var err error
					rows, err = copyRows(cmd.Context(), r, w)
					return err
				})
			})
			if err != nil {
				return err
			}
			a.logger.Info("converted", "in", in, "out", out, "rows", rows, "append", appendMode)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&appendMode, "append", "a", false, "append to OUT instead of truncating it")

	return cmd
}

// copyRows pipes the rows of r into w and returns the number of rows written.
func copyRows(ctx context.Context, r *csv.Reader, w *csv.Writer) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rows := make(chan []any)
	done := make(chan struct{})
	var (
		n       int
		readErr error
	)
	go func() {
		defer close(done)
		defer close(rows)
		for res := range r.Stream(ctx) {
			if res.Err != nil {
				readErr = res.Err
				return
			}
			select {
			case rows <- csv.Strings(res.Row):
				n++
			case <-ctx.Done():
				return
			}
		}
	}()

	err := w.WriteStream(ctx, rows)
	cancel()
	<-done
	if err != nil {
		return n, err
	}
	return n, readErr
}
