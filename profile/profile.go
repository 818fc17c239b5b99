// Package profile loads named generation configs from HCL files.
//
//	map "act1" {
//	  layers = 12
//	  slots  = 5
//	  categories = ["normal", "loot", "event"]
//	  placement {
//	    width         = 10
//	    layer_padding = 2
//	  }
//	}
//
// Attributes left out keep the values of waymap.DefaultConfig.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/meikuraledutech/waymap"
)

// DefaultName is the profile used when a request names none.
const DefaultName = "default"

type hclProfileFile struct {
	Maps []*hclMap `hcl:"map,block"`
}

type hclMap struct {
	Name                    string        `hcl:"name,label"`
	Layers                  *int          `hcl:"layers,optional"`
	Slots                   *int          `hcl:"slots,optional"`
	StartingPoints          *int          `hcl:"starting_points,optional"`
	ChanceMiddle            *float64      `hcl:"chance_middle,optional"`
	ChanceSide              *float64      `hcl:"chance_side,optional"`
	AllowCrisscrossing      *bool         `hcl:"allow_crisscrossing,optional"`
	MinConnectionMultiplier *float64      `hcl:"min_connection_multiplier,optional"`
	MaxRegenerationAttempts *int          `hcl:"max_regeneration_attempts,optional"`
	MaxConnectionAttempts   *int          `hcl:"max_connection_attempts,optional"`
	Categories              []string      `hcl:"categories,optional"`
	MarkEndpoints           *bool         `hcl:"mark_endpoints,optional"`
	Placement               *hclPlacement `hcl:"placement,block"`
	Segments                *hclSegments  `hcl:"segments,block"`
}

type hclPlacement struct {
	Width        *float64 `hcl:"width,optional"`
	LayerPadding *float64 `hcl:"layer_padding,optional"`
}

type hclSegments struct {
	Length  *float64 `hcl:"length,optional"`
	Height  *float64 `hcl:"height,optional"`
	Spacing *float64 `hcl:"spacing,optional"`
}

// Builtin returns the profiles available without any files.
func Builtin() map[string]waymap.Config {
	return map[string]waymap.Config{DefaultName: waymap.DefaultConfig()}
}

// Parse decodes every map block in src. filename is used in diagnostics.
func Parse(src []byte, filename string) (map[string]waymap.Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("waymap: parse profile file %s: %w", filename, diags)
	}

	var parsed hclProfileFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("waymap: decode profile file %s: %w", filename, diags)
	}

	out := make(map[string]waymap.Config, len(parsed.Maps))
	for _, block := range parsed.Maps {
		if _, dup := out[block.Name]; dup {
			return nil, fmt.Errorf("waymap: profile %q defined twice in %s", block.Name, filename)
		}
		cfg, err := block.config()
		if err != nil {
			return nil, fmt.Errorf("waymap: profile %q in %s: %w", block.Name, filename, err)
		}
		out[block.Name] = cfg
	}
	return out, nil
}

// LoadFile parses a single profile file.
func LoadFile(path string) (map[string]waymap.Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("waymap: read profile file: %w", err)
	}
	return Parse(src, path)
}

// LoadDir parses every *.hcl file directly inside dir. A profile name may
// appear in only one file.
func LoadDir(dir string) (map[string]waymap.Config, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.hcl"))
	if err != nil {
		return nil, fmt.Errorf("waymap: find profile files in %s: %w", dir, err)
	}
	sort.Strings(files)

	out := map[string]waymap.Config{}
	origin := map[string]string{}
	for _, file := range files {
		profiles, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		for name, cfg := range profiles {
			if prev, dup := origin[name]; dup {
				return nil, fmt.Errorf("waymap: profile %q defined in both %s and %s", name, prev, file)
			}
			origin[name] = file
			out[name] = cfg
		}
	}
	return out, nil
}

func (b *hclMap) config() (waymap.Config, error) {
	cfg := waymap.DefaultConfig()
	set(&cfg.Layers, b.Layers)
	set(&cfg.Slots, b.Slots)
	set(&cfg.StartingPoints, b.StartingPoints)
	set(&cfg.ChanceMiddle, b.ChanceMiddle)
	set(&cfg.ChanceSide, b.ChanceSide)
	set(&cfg.AllowCrisscrossing, b.AllowCrisscrossing)
	set(&cfg.MinConnectionMultiplier, b.MinConnectionMultiplier)
	set(&cfg.MaxRegenerationAttempts, b.MaxRegenerationAttempts)
	set(&cfg.MaxConnectionAttempts, b.MaxConnectionAttempts)
	set(&cfg.MarkEndpoints, b.MarkEndpoints)

	if b.Categories != nil {
		cfg.Categories = make([]waymap.Category, 0, len(b.Categories))
		for _, name := range b.Categories {
			c, err := waymap.ParseCategory(name)
			if err != nil {
				return cfg, err
			}
			cfg.Categories = append(cfg.Categories, c)
		}
	}
	if p := b.Placement; p != nil {
		set(&cfg.Placement.Width, p.Width)
		set(&cfg.Placement.LayerPadding, p.LayerPadding)
	}
	if s := b.Segments; s != nil {
		set(&cfg.Segments.Length, s.Length)
		set(&cfg.Segments.Height, s.Height)
		set(&cfg.Segments.Spacing, s.Spacing)
	}

	if _, _, err := cfg.Normalize(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
