package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shapestone/csvcodec/pkg/csv"
)

func newReadCommand(a *app) *cobra.Command {
	var (
		header bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "read FILE",
		Short: "Print the rows of a CSV file",
		Long: `Print the rows of a CSV file as CSV in the output dialect, as JSON lines,
or as a stream of YAML documents. Use - to read standard input.

With --header the first row names the fields and each record is printed as
an object keyed by header name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.newOutput(cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			err = a.readInput(cmd, args[0], func(r *csv.Reader) error {
				if header {
					return emitRecords(cmd.Context(), r.WithHeader(), out)
				}
				return emitRows(cmd.Context(), r, out)
			})
			if cerr := out.close(); err == nil {
				err = cerr
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&header, "header", false, "treat the first row as the header")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv, json, yaml")

	return cmd
}

// readInput opens path, or standard input for "-", and passes a Reader to fn.
func (a *app) readInput(cmd *cobra.Command, path string, fn func(*csv.Reader) error) error {
	opts, err := a.readerOptions()
	if err != nil {
		return err
	}
	a.logger.Debug("reading", "path", path)

	if path == "-" {
		r, err := csv.NewReader(cmd.InOrStdin(), opts)
		if err != nil {
			return err
		}
		return fn(r)
	}
	return csv.Open(path, opts, fn)
}

// output prints rows ([]string) or Records in one format.
type output struct {
	header func([]string) error
	emit   func(any) error
	close  func() error
}

func (a *app) newOutput(w io.Writer, format string) (*output, error) {
	noHeader := func([]string) error { return nil }

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		return &output{header: noHeader, emit: enc.Encode, close: func() error { return nil }}, nil

	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &output{header: noHeader, emit: enc.Encode, close: enc.Close}, nil

	case "csv":
		opts, err := a.cfg.WriterOptions()
		if err != nil {
			return nil, err
		}
		cw, err := csv.NewWriter(w, opts)
		if err != nil {
			return nil, err
		}
		emit := func(v any) error {
			switch v := v.(type) {
			case []string:
				return cw.WriteRow(csv.Strings(v))
			case csv.Record:
				return cw.WriteRow(csv.Strings(v.Fields()))
			}
			return fmt.Errorf("unexpected value %T", v)
		}
		header := func(h []string) error {
			return cw.WriteRow(csv.Strings(h))
		}
		return &output{header: header, emit: emit, close: cw.Close}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

func emitRows(ctx context.Context, r *csv.Reader, out *output) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for res := range r.Stream(ctx) {
		if res.Err != nil {
			return res.Err
		}
		if err := out.emit(res.Row); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func emitRecords(ctx context.Context, h *csv.HeaderReader, out *output) error {
	header, err := h.Header()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := out.header(header); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for res := range h.Stream(ctx) {
		if res.Err != nil {
			return res.Err
		}
		if err := out.emit(res.Record); err != nil {
			return err
		}
	}
	return ctx.Err()
}
