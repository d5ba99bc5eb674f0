package main

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"scan-station/internal/config"
	"scan-station/internal/domain"
)

func newExportCmd() *cobra.Command {
	var (
		output string
		dpi    int
	)

	cmd := &cobra.Command{
		Use:   "export [image files...]",
		Short: "Assemble previously captured page images into a PDF",
		Example: `  scanctl export page-001.png page-002.png --output doc.pdf
  scanctl export *.bmp --dpi 300 --output archive.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := config.NewContainer(cmd.Context())
			if err != nil {
				return err
			}

			doc := domain.NewDocument(docNameFromOutput(output))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
				if err != nil {
					return fmt.Errorf("%s is not a supported image: %w", path, err)
				}
				doc.AppendPage(domain.NewPage(data, cfg.Width, cfg.Height, dpi))
			}

			return writeArtifacts(cmd, container, doc, output)
		},
	}

	cmd.Flags().StringVar(&output, "output", "export.pdf", "output file; extension picks the format")
	cmd.Flags().IntVar(&dpi, "dpi", 300, "resolution the pages were captured at")

	return cmd
}
