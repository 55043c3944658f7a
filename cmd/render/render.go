// Package render implements a debugging aid: rasterize a PDF the same
// way the pipeline does and write the page JPEGs to disk for
// inspection.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scanbook/scan-csv/cmd/root"
	"scanbook/scan-csv/internal/logging"
	"scanbook/scan-csv/internal/rasterize"
)

// Cmd is the render command.
var Cmd = &cobra.Command{
	Use:   "render [file.pdf]",
	Short: "Rasterize a PDF into the page images sent for extraction",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.NewLogrusAdapterFromLogger(root.Log)
	cfg := root.Cfg

	data, err := os.ReadFile(args[0]) // #nosec G304 -- CLI tool takes user-provided paths
	if err != nil {
		return fmt.Errorf("error reading input file: %w", err)
	}

	outDir := root.Output
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	opts := rasterize.Options{Scale: cfg.Render.Scale, JPEGQuality: cfg.Render.JPEGQuality}
	name := filepath.Base(args[0])

	pages, err := rasterize.Rasterize(cmd.Context(), rasterize.NewFitzRenderer(), data, name, opts, log, func(page, total int) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Rendering page %d/%d...\n", page, total)
	})
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	for i, page := range pages {
		path := filepath.Join(outDir, fmt.Sprintf("%s_p%03d.jpg", base, i+1))
		if err := os.WriteFile(path, page, 0600); err != nil {
			return fmt.Errorf("error writing page image: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}

	return nil
}
