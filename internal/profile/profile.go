// Package profile loads named scan setting presets from a YAML file.
package profile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"scan-station/internal/domain"
)

// profileYAML is the on-disk shape of one preset. Omitted fields fall back
// to the defaults, so a preset only has to name what it changes.
type profileYAML struct {
	Resolution  int    `yaml:"resolution"`
	ColorMode   string `yaml:"color_mode"`
	PaperSize   string `yaml:"paper_size"`
	Source      string `yaml:"source"`
	Duplex      bool   `yaml:"duplex"`
	Brightness  int    `yaml:"brightness"`
	Contrast    int    `yaml:"contrast"`
	AutoCrop    bool   `yaml:"auto_crop"`
	AutoEnhance bool   `yaml:"auto_enhance"`
	AutoOCR     bool   `yaml:"auto_ocr"`
	OCRLanguage string `yaml:"ocr_language"`
}

type fileYAML struct {
	Profiles map[string]profileYAML `yaml:"profiles"`
}

// Store holds the presets read from one profiles file.
type Store struct {
	profiles map[string]domain.ScanSettings
}

// Load parses the YAML profiles file. A missing path yields an empty store,
// not an error; presets are optional.
func Load(path string) (*Store, error) {
	s := &Store{profiles: make(map[string]domain.ScanSettings)}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	var f fileYAML
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse profiles file: %w", err)
	}

	for name, p := range f.Profiles {
		s.profiles[name] = p.toSettings()
	}
	return s, nil
}

func (p profileYAML) toSettings() domain.ScanSettings {
	settings := domain.DefaultScanSettings()
	if p.Resolution > 0 {
		settings.Resolution = p.Resolution
	}
	if p.ColorMode != "" {
		settings.ColorMode = domain.ColorMode(p.ColorMode)
	}
	if p.PaperSize != "" {
		settings.PaperSize = domain.PaperSize(p.PaperSize)
	}
	if p.Source != "" {
		settings.Source = domain.ScanSource(p.Source)
	}
	settings.Duplex = p.Duplex
	settings.Brightness = p.Brightness
	settings.Contrast = p.Contrast
	settings.AutoCrop = p.AutoCrop
	settings.AutoEnhance = p.AutoEnhance
	settings.AutoOCR = p.AutoOCR
	if p.OCRLanguage != "" {
		settings.OCRLanguage = p.OCRLanguage
	}
	return settings
}

// Names lists the preset names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the preset's settings.
func (s *Store) Get(name string) (domain.ScanSettings, bool) {
	settings, ok := s.profiles[name]
	return settings.Clone(), ok
}
