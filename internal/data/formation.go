package data

import (
	"fmt"
	"os"

	"github.com/cipherstorm/director/internal/formation"
	"gopkg.in/yaml.v3"
)

// FormationEntry names a formation and the first wave it may appear on.
type FormationEntry struct {
	Name       string `yaml:"name"`
	UnlockWave int    `yaml:"unlock_wave"`
}

type formationListFile struct {
	Formations []FormationEntry `yaml:"formations"`
}

// LoadFormationTable loads the formation unlock table from a YAML file.
func LoadFormationTable(path string) (formation.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read formation_list: %w", err)
	}
	return ParseFormationTable(raw)
}

// ParseFormationTable decodes a formation list document.
func ParseFormationTable(raw []byte) (formation.Table, error) {
	var f formationListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse formation_list: %w", err)
	}
	t := make(formation.Table, 0, len(f.Formations))
	seen := make(map[formation.Geometry]bool, len(f.Formations))
	for _, e := range f.Formations {
		g, err := formation.ParseGeometry(e.Name)
		if err != nil {
			return nil, fmt.Errorf("parse formation_list: %w", err)
		}
		if seen[g] {
			return nil, fmt.Errorf("parse formation_list: %s listed twice", g)
		}
		if e.UnlockWave < 1 {
			return nil, fmt.Errorf("parse formation_list: %s: unlock_wave must be >= 1", g)
		}
		seen[g] = true
		t = append(t, formation.Unlock{Geometry: g, Wave: e.UnlockWave})
	}
	return t, nil
}
