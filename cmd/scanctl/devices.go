package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scan-station/internal/config"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List connected scanners and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := config.NewContainer(cmd.Context())
			if err != nil {
				return err
			}

			devices, err := container.Prober.ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("no scanners connected")
				return nil
			}

			for _, dev := range devices {
				sources := make([]string, 0, len(dev.SupportedSources))
				for _, s := range dev.SupportedSources {
					sources = append(sources, string(s))
				}
				fmt.Printf("%s\n", dev.Name)
				fmt.Printf("  id:           %s\n", dev.ID)
				fmt.Printf("  manufacturer: %s\n", dev.Manufacturer)
				fmt.Printf("  class:        %s\n", dev.Class)
				fmt.Printf("  color:        %t  duplex: %t  adf: %t\n", dev.SupportsColor, dev.SupportsDuplex, dev.SupportsADF)
				fmt.Printf("  max dpi:      %d  (supported: %v)\n", dev.MaxDPI, dev.SupportedDPIs)
				fmt.Printf("  sources:      %s\n", strings.Join(sources, ", "))
			}
			return nil
		},
	}
}
