package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuihold/internal/model"
)

var (
	exportID     int64
	exportFormat string
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a session result with its hit log",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().Int64Var(&exportID, "id", 0, "result id (default: latest result of the current user)")
	cmd.Flags().StringVar(&exportFormat, "format", "yaml", "output format (yaml, json)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(exportFormat))
	if format != "yaml" && format != "json" {
		return fmt.Errorf("--format must be yaml or json")
	}

	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	summary, err := resolveResult(ctx, a, exportID)
	if err != nil {
		return err
	}
	result, err := a.st.LoadSessionResult(ctx, summary.ID)
	if err != nil {
		return fmt.Errorf("failed to load result: %w", err)
	}
	a.log.Debug("exporting result #%d as %s", summary.ID, format)
	return encodeResult(cmd.OutOrStdout(), format, result)
}

func encodeResult(w io.Writer, format string, result model.SessionResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
