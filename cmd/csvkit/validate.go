package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shapestone/csvcodec/pkg/csv"
)

func newValidateCommand(a *app) *cobra.Command {
	var header bool

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check that CSV files parse with the input dialect",
		Long: `Check that CSV files parse with the input dialect and the field count
policies. The first error of each file is reported with its position.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				rows, err := a.validateFile(cmd, path, header)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "%s: ok (%d rows)\n", path, rows)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files are invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&header, "header", false, "treat the first row as the header")

	return cmd
}

// validateFile reads every row of path and returns the number of rows read.
func (a *app) validateFile(cmd *cobra.Command, path string, header bool) (int, error) {
	rows := 0
	err := a.readInput(cmd, path, func(r *csv.Reader) error {
		if header {
			for _, err := range r.WithHeader().Records() {
				if err != nil {
					return err
				}
				rows++
			}
			return nil
		}
		for _, err := range r.Rows() {
			if err != nil {
				return err
			}
			rows++
		}
		return nil
	})
	return rows, err
}
