package data

import (
	"fmt"
	"os"

	"github.com/cipherstorm/director/internal/director"
	"gopkg.in/yaml.v3"
)

// EnemyTemplate holds static data for one enemy kind loaded from YAML.
type EnemyTemplate struct {
	Kind   string  `yaml:"kind"` // grunt, striker, miniboss, boss
	Name   string  `yaml:"name"`
	HP     int     `yaml:"hp"` // ignored for milestone kinds, which scale the grunt
	Radius float64 `yaml:"radius"`
	Score  int     `yaml:"score"`
	Style  uint8   `yaml:"style"` // projectile style id
}

type enemyListFile struct {
	Enemies []EnemyTemplate `yaml:"enemies"`
}

// EnemyTable holds enemy templates indexed by kind.
type EnemyTable struct {
	templates map[string]*EnemyTemplate
}

// LoadEnemyTable loads enemy templates from a YAML file.
func LoadEnemyTable(path string) (*EnemyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enemy_list: %w", err)
	}
	return ParseEnemyTable(raw)
}

// ParseEnemyTable decodes an enemy list document.
func ParseEnemyTable(raw []byte) (*EnemyTable, error) {
	var f enemyListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse enemy_list: %w", err)
	}
	t := &EnemyTable{templates: make(map[string]*EnemyTemplate, len(f.Enemies))}
	for i := range f.Enemies {
		e := &f.Enemies[i]
		if e.Kind == "" {
			return nil, fmt.Errorf("parse enemy_list: entry %d has no kind", i)
		}
		if e.Radius <= 0 {
			return nil, fmt.Errorf("parse enemy_list: %s: radius must be positive", e.Kind)
		}
		t.templates[e.Kind] = e
	}
	return t, nil
}

// Get returns an enemy template by kind, or nil if not found.
func (t *EnemyTable) Get(kind string) *EnemyTemplate {
	return t.templates[kind]
}

// Count returns the number of loaded templates.
func (t *EnemyTable) Count() int {
	return len(t.templates)
}

// Roster builds the director's archetypes. Kinds missing from the table
// keep their built-in values.
func (t *EnemyTable) Roster() director.Roster {
	r := director.DefaultRoster()
	apply := func(a *director.Archetype) {
		e := t.templates[a.Kind]
		if e == nil {
			return
		}
		if e.HP > 0 {
			a.Health = e.HP
		}
		a.Radius = e.Radius
		a.Score = e.Score
	}
	apply(&r.Grunt)
	apply(&r.Striker)
	apply(&r.MiniBoss)
	apply(&r.Boss)
	return r
}

// Styles maps each kind to its projectile style id.
func (t *EnemyTable) Styles() map[string]uint8 {
	out := make(map[string]uint8, len(t.templates))
	for k, e := range t.templates {
		out[k] = e.Style
	}
	return out
}
