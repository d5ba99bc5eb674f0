package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scan-station/internal/config"
	"scan-station/internal/domain"
	"scan-station/internal/service"
)

func newScanCmd() *cobra.Command {
	var (
		deviceID   string
		mode       string
		source     string
		dpi        int
		color      string
		paper      string
		duplex     bool
		profileArg string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan pages and write them to a file",
		Example: `  # One page from the default scanner to a PDF
  scanctl scan --output page.pdf

  # Feeder batch, grayscale, 200 dpi
  scanctl scan --mode feeder --color grayscale --dpi 200 --output batch.pdf

  # Use a named preset from the profiles file
  scanctl scan --profile receipts --output receipts.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := config.NewContainer(cmd.Context())
			if err != nil {
				return err
			}

			settings := domain.DefaultScanSettings()
			if profileArg != "" {
				p, ok := container.Profiles.Get(profileArg)
				if !ok {
					return fmt.Errorf("unknown profile %q (have: %s)", profileArg, strings.Join(container.Profiles.Names(), ", "))
				}
				settings = p
			}
			if cmd.Flags().Changed("dpi") {
				settings.Resolution = dpi
			}
			if cmd.Flags().Changed("color") {
				settings.ColorMode = domain.ColorMode(color)
			}
			if cmd.Flags().Changed("paper") {
				settings.PaperSize = domain.PaperSize(paper)
			}
			if cmd.Flags().Changed("source") {
				settings.Source = domain.ScanSource(source)
			}
			if cmd.Flags().Changed("duplex") {
				settings.Duplex = duplex
			}

			if deviceID == "" {
				dev, err := container.Prober.GetDefaultDevice(cmd.Context())
				if err != nil {
					return err
				}
				if dev == nil {
					return fmt.Errorf("no scanner connected")
				}
				deviceID = dev.ID
				fmt.Printf("using %s (%s)\n", dev.Name, dev.ID)
			}

			sink := domain.ProgressFunc(func(p domain.ScanProgress) {
				fmt.Printf("  %s (%d%%)\n", p.Status, p.Percent)
			})

			var pages []*domain.Page
			switch mode {
			case "single":
				page, err := container.SessionDriver.ScanSingle(cmd.Context(), deviceID, settings, sink)
				if err != nil {
					return err
				}
				pages = []*domain.Page{page}
			case "feeder":
				pages, err = container.SessionDriver.ScanMany(cmd.Context(), deviceID, settings, sink)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("mode must be single or feeder, got %q", mode)
			}
			if len(pages) == 0 {
				return fmt.Errorf("no pages captured")
			}

			doc := domain.NewDocument(docNameFromOutput(output))
			for _, page := range pages {
				doc.AppendPage(page)
			}
			return writeArtifacts(cmd, container, doc, output)
		},
	}

	cmd.Flags().StringVar(&deviceID, "device", "", "device id (default: first connected scanner)")
	cmd.Flags().StringVar(&mode, "mode", "single", "single or feeder")
	cmd.Flags().StringVar(&source, "source", "", "scan source (auto, flatbed, feeder, duplex, ...)")
	cmd.Flags().IntVar(&dpi, "dpi", 300, "scan resolution")
	cmd.Flags().StringVar(&color, "color", "color", "color mode (color, grayscale, black_and_white)")
	cmd.Flags().StringVar(&paper, "paper", "letter", "paper size (letter, legal, a4, ..., custom)")
	cmd.Flags().BoolVar(&duplex, "duplex", false, "scan both sides")
	cmd.Flags().StringVar(&profileArg, "profile", "", "named preset from the profiles file")
	cmd.Flags().StringVar(&output, "output", "scan.pdf", "output file; extension picks the format")

	return cmd
}

func docNameFromOutput(output string) string {
	base := filepath.Base(output)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeArtifacts exports the document in the format named by the output
// file extension. Image formats produce one numbered file per page next to
// the requested path.
func writeArtifacts(cmd *cobra.Command, container *config.Container, doc *domain.Document, output string) error {
	format := service.ExportFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), "."))
	if format == "jpg" {
		format = service.ExportJPEG
	}
	if format == "" {
		format = service.ExportPDF
	}

	artifacts, err := container.ExportService.Export(cmd.Context(), doc, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(output)
	for _, artifact := range artifacts {
		path := filepath.Join(dir, artifact.Filename)
		if len(artifacts) == 1 {
			path = output
		}
		if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("wrote %s (%d bytes)\n", path, len(artifact.Data))
	}
	return nil
}
