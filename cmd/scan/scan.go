// Package scan implements the end-to-end command: ingest the given
// statement scans, extract journal entries, and write the account's
// CSV export.
package scan

import (
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scanbook/scan-csv/cmd/root"
	"scanbook/scan-csv/internal/categories"
	"scanbook/scan-csv/internal/extract"
	"scanbook/scan-csv/internal/ingest"
	"scanbook/scan-csv/internal/ledger"
	"scanbook/scan-csv/internal/logging"
	"scanbook/scan-csv/internal/rasterize"
	"scanbook/scan-csv/internal/session"
)

var (
	accountName string
	resumeCSV   string

	// Cmd is the scan command.
	Cmd = &cobra.Command{
		Use:   "scan [files...]",
		Short: "Extract journal entries from statement scans and export CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
)

func init() {
	Cmd.Flags().StringVarP(&accountName, "account", "a", "Imported account", "Display name for the ledger account")
	Cmd.Flags().StringVar(&resumeCSV, "resume", "", "Previously exported ledger CSV to load before scanning")
}

func run(cmd *cobra.Command, args []string) error {
	log := logging.NewLogrusAdapterFromLogger(root.Log)
	cfg := root.Cfg

	cats, err := categories.Load(cfg.Categories.File)
	if err != nil {
		return err
	}

	timeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	client, err := extract.NewGeminiClient(cmd.Context(), cfg.AI.APIKey, cfg.AI.Model, timeout, cats, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Failed to close Gemini client")
		}
	}()

	opts := rasterize.Options{Scale: cfg.Render.Scale, JPEGQuality: cfg.Render.JPEGQuality}
	normalizer := ingest.NewNormalizer(rasterize.NewFitzRenderer(), opts, log)
	dispatcher := extract.NewDispatcher(client, log)
	sess := session.New(ledger.NewStore(), dispatcher, normalizer, accountName, log)
	sess.OnProgress(func(msg string) {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	})

	if resumeCSV != "" {
		n, err := sess.LoadCSV(resumeCSV)
		if err != nil {
			return err
		}
		log.Info("Loaded previous export", logging.F("entries", n))
	}

	files, err := readInputFiles(args, log)
	if err != nil {
		return err
	}

	// Ctrl-C maps to the pipeline's cooperative cancellation: entries
	// from files already completed stay and are still exported.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := sess.ProcessFiles(ctx, files); err != nil {
		return err
	}

	account, err := sess.ActiveAccount()
	if err != nil {
		return err
	}

	out, err := sess.ExportCSV(account.ID)
	if err != nil {
		return err
	}

	path := outputPath(root.Output, out.FileName)
	if err := os.WriteFile(path, out.Data, 0600); err != nil {
		return fmt.Errorf("error writing CSV file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", path, out.Encoding)
	return nil
}

func readInputFiles(paths []string, log logging.Logger) ([]ingest.InputFile, error) {
	files := make([]ingest.InputFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p) // #nosec G304 -- CLI tool takes user-provided paths
		if err != nil {
			return nil, fmt.Errorf("error reading input file: %w", err)
		}

		mt := MediaTypeFor(p)
		if !ingest.Accepted(mt) {
			log.Warn("Skipping unsupported file", logging.F("file", p), logging.F("media_type", mt))
		}

		files = append(files, ingest.InputFile{
			Name:      filepath.Base(p),
			MediaType: mt,
			Data:      data,
		})
	}
	return files, nil
}

// MediaTypeFor maps a file path to its declared media type by
// extension. Unknown extensions come back empty and are dropped by the
// ingestor.
func MediaTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return ingest.PDFMediaType
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	if mt := mime.TypeByExtension(ext); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return ""
}

func outputPath(output, fileName string) string {
	if output == "" {
		return fileName
	}
	if st, err := os.Stat(output); err == nil && st.IsDir() {
		return filepath.Join(output, fileName)
	}
	return output
}
