package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"racebot/ergast"
	"racebot/models"
	"racebot/temperrors"
)

func newQueryCmd(a *app) *cobra.Command {
	names := make([]string, 0, len(ergast.Kinds))
	for _, k := range ergast.Kinds {
		names = append(names, string(k))
	}

	cmd := &cobra.Command{
		Use:       "query <kind>",
		Short:     "Fetch one resource kind and print its records",
		Long:      "Fetch one resource kind and print its records.\n\nKinds: " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := ergast.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", temperrors.ErrUnknownKind, args[0])
			}

			q, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}

			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return err
			}
			return a.query(cmd.Context(), cmd.OutOrStdout(), kind, q, format)
		},
	}

	for _, f := range ergast.Fields {
		cmd.Flags().String(string(f), "", fmt.Sprintf("Filter by %s", f))
	}
	cmd.Flags().String("format", "json", "Output format (json, yaml)")
	return cmd
}

// queryFromFlags sets every filter flag given on the command line, empty
// values included.
func queryFromFlags(cmd *cobra.Command) (ergast.Query, error) {
	var q ergast.Query
	for _, f := range ergast.Fields {
		flag := cmd.Flags().Lookup(string(f))
		if flag == nil || !flag.Changed {
			continue
		}
		if err := q.Set(f, flag.Value.String()); err != nil {
			return ergast.Query{}, err
		}
	}
	return q, nil
}

func (a *app) query(ctx context.Context, out io.Writer, kind ergast.Kind, q ergast.Query, format string) error {
	defer a.close()

	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q", format)
	}

	gateway, err := a.gateway()
	if err != nil {
		return err
	}

	records, page, fetchErr := gateway.GetRecordsPage(ctx, kind, q)
	if records == nil {
		return fetchErr
	}
	a.logger.DebugContext(ctx, "Query done",
		slog.String("kind", string(kind)),
		slog.Int("count", len(records)),
		slog.String("total", page.Total))

	if err := writeRecords(out, records, page, format); err != nil {
		return err
	}
	if errors.Is(fetchErr, temperrors.ErrExhausted) {
		return fmt.Errorf("data source unavailable: %w", fetchErr)
	}
	return fetchErr
}

type queryOutput struct {
	Data       []any             `json:"data" yaml:"data"`
	Pagination models.Pagination `json:"pagination" yaml:"pagination"`
}

func writeRecords(out io.Writer, records []json.RawMessage, page models.Pagination, format string) error {
	result := queryOutput{Data: make([]any, 0, len(records)), Pagination: page}
	for _, r := range records {
		var v any
		if err := json.Unmarshal(r, &v); err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}
		result.Data = append(result.Data, v)
	}

	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		return enc.Close()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
