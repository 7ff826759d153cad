// wavetable renders the wave progression of a config as YAML so designers
// can review counts, timers and milestones without running the director.
//
// Produces:
//   - data/yaml/wave_preview.yaml
//
// Usage:
//
//	go run ./cmd/wavetable [config.toml] [waves]
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cipherstorm/director/internal/config"
	"github.com/cipherstorm/director/internal/data"
	"github.com/cipherstorm/director/internal/director"
	"github.com/cipherstorm/director/internal/formation"
	"gopkg.in/yaml.v3"
)

type WaveRow struct {
	Wave         int      `yaml:"wave"`
	Milestone    string   `yaml:"milestone,omitempty"`
	Enemies      int      `yaml:"enemies"`
	EnemiesLow   int      `yaml:"enemies_low_threat"`
	EnemiesHigh  int      `yaml:"enemies_high_threat"`
	Cap          int      `yaml:"cap"`
	Tier         int      `yaml:"tier"`
	FireInterval string   `yaml:"fire_interval"`
	TimeLimit    string   `yaml:"time_limit"`
	DelayAfter   string   `yaml:"delay_after"`
	HealthScale  float64  `yaml:"health_scale"`
	Heal         int      `yaml:"heal"`
	ScoreBonus   int      `yaml:"score_bonus"`
	ExtraLife    bool     `yaml:"extra_life,omitempty"`
	Formations   []string `yaml:"formations"`
}

type PreviewFile struct {
	Source string    `yaml:"source"`
	Waves  []WaveRow `yaml:"waves"`
}

func main() {
	cfgPath := filepath.Join("config", "director.toml")
	outputPath := filepath.Join("data", "yaml", "wave_preview.yaml")
	waves := 40

	if len(os.Args) >= 2 {
		cfgPath = os.Args[1]
	}
	if len(os.Args) >= 3 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 1 {
			fmt.Fprintf(os.Stderr, "bad wave count %q\n", os.Args[2])
			os.Exit(1)
		}
		waves = n
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	table, err := data.LoadFormationTable(cfg.Data.FormationList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using built-in formations\n", err)
		table = formation.DefaultTable()
	}

	rows := make([]WaveRow, 0, waves)
	for w := 1; w <= waves; w++ {
		rows = append(rows, buildRow(w, cfg, table))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output directory: %v\n", err)
		os.Exit(1)
	}
	out := PreviewFile{Source: cfgPath, Waves: rows}
	yamlData, err := yaml.Marshal(&out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshalling YAML: %v\n", err)
		os.Exit(1)
	}
	header := "# Wave progression preview - generated by cmd/wavetable, do not edit\n\n"
	if err := os.WriteFile(outputPath, append([]byte(header), yamlData...), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outputPath, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d waves to %s\n", len(rows), outputPath)
}

func buildRow(w int, cfg *config.Config, table formation.Table) WaveRow {
	wc := cfg.Waves
	d := cfg.Difficulty
	m := director.MilestoneFor(w, wc)

	row := WaveRow{
		Wave:         w,
		Milestone:    m.String(),
		Enemies:      director.EnemyCount(w, wc),
		EnemiesLow:   director.ScaledCount(w, d.MultiplierMin, wc),
		EnemiesHigh:  director.ScaledCount(w, d.MultiplierMax, wc),
		Cap:          director.Cap(w, wc),
		Tier:         director.Complexity(w, wc),
		FireInterval: director.FireInterval(w, wc).String(),
		DelayAfter:   director.InterWaveDelay(w, wc).String(),
		HealthScale:  director.HealthScale(w, wc),
		Heal:         director.HealAmount(w, wc),
		ScoreBonus:   director.ScoreBonus(w, wc),
		ExtraLife:    director.GrantsLife(w, wc),
	}
	if m != director.Regular {
		row.Enemies, row.EnemiesLow, row.EnemiesHigh = 1, 1, 1
		row.Formations = []string{formation.Line.String()}
	} else {
		for _, g := range formation.Unlocked(w, table) {
			row.Formations = append(row.Formations, g.String())
		}
	}
	row.TimeLimit = director.TimeLimit(row.Enemies, wc).String()
	return row
}
