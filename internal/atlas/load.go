// apps/go-server/internal/atlas/load.go
//
// Loading of border data.
//
// Sources, in order of preference:
//   1. BORDERS_FILE, passed in as path: *.json or *.yaml/*.yml mapping id → [ids].
//   2. The embedded assets/borders.json.
//
// Both formats are the same shape:
//
//	FRA: [AND, BEL, BRA, CHE, DEU, ESP, ITA, LUX, MCO, SUR]
//	JPN: []

package atlas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/overland/apps/go-server/assets"
)

// Load reads border data from path (or the embedded default when path is empty)
// and builds the Graph.
func Load(path string, opts Options) (*Graph, error) {
	var (
		raw map[string][]string
		err error
	)
	if path == "" {
		raw, err = embeddedBorders()
	} else {
		raw, err = readBorderFile(path)
	}
	if err != nil {
		return nil, err
	}
	g, err := NewGraph(raw, opts)
	if err != nil {
		return nil, err
	}
	src := path
	if src == "" {
		src = "embedded"
	}
	log.Info().Str("source", src).Int("countries", g.Len()).Msg("border graph loaded")
	return g, nil
}

func embeddedBorders() (map[string][]string, error) {
	b, err := assets.Borders()
	if err != nil {
		return nil, fmt.Errorf("read embedded borders: %w", err)
	}
	return DecodeBorders(b, ".json")
}

func readBorderFile(path string) (map[string][]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeBorders(b, filepath.Ext(path))
}

// DecodeBorders parses border data; ext selects YAML (".yaml", ".yml") or JSON (anything else).
func DecodeBorders(b []byte, ext string) (map[string][]string, error) {
	var raw map[string][]string
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml borders: %w", err)
		}
	default:
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("decode json borders: %w", err)
		}
	}
	return raw, nil
}
