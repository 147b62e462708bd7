package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sadopc/billr/internal/billing"
	"github.com/sadopc/billr/internal/logger"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <invoice|quotation> <number>",
	Short: "Render a saved document to a one-page PDF",
	Long: `Look up a saved invoice or quotation by number and print it to an A4
PDF through headless Chrome. The file is named Invoice_<number>.pdf or
Quotation_<number>.pdf.`,
	Example: `  billr export invoice AINV003
  billr export quotation AQUT001 -o ./pdfs`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Output directory (default BILLR_EXPORT_DIR)")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")

	kind, err := billing.ParseKind(args[0])
	if err != nil {
		return err
	}
	number := billing.DocumentID(args[1])

	doc, ok, err := billing.NewDocumentStore(env.store).Find(kind, number)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %s not found", kind, number)
	}

	dir, _ := cmd.Flags().GetString("output")
	if dir == "" {
		dir = env.cfg.ExportDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, billing.ExportFilename(kind, doc.Number, time.Now()))

	exporter, printer, err := newExporter(env.cfg)
	if err != nil {
		return err
	}
	defer printer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("kind", string(kind)).Str("number", string(number)).Str("path", path).Msg("exporting document")
	if err := exporter.ExportDocument(ctx, kind, &doc, path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s %s to %s\n", kind, number, path)
	return nil
}
