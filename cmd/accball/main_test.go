package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/accball/internal/config"
	"github.com/verte-zerg/accball/internal/model"
	"github.com/verte-zerg/accball/internal/motion"
	"github.com/verte-zerg/accball/internal/stats"
)

func TestDefaultConfigTemplateLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Run.Source != nil || cfg.Run.RateHz != nil || cfg.Run.Noise != nil || cfg.Run.Record != nil {
		t.Fatalf("expected commented template to set nothing, got %+v", cfg.Run)
	}

	uncommented := strings.ReplaceAll(defaultConfigTemplate(), "# source", "source")
	if err := os.WriteFile(path, []byte(uncommented), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load uncommented template: %v", err)
	}
	if cfg.Run.Source == nil || *cfg.Run.Source != defaultSource {
		t.Fatalf("expected source %q, got %+v", defaultSource, cfg.Run.Source)
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  model.Config
		ok   bool
	}{
		{name: "defaults", cfg: model.Config{RateHz: defaultRate, Noise: defaultNoise}, ok: true},
		{name: "max rate", cfg: model.Config{RateHz: maxRate}, ok: true},
		{name: "zero rate", cfg: model.Config{RateHz: 0}},
		{name: "rate too high", cfg: model.Config{RateHz: maxRate + 1}},
		{name: "negative noise", cfg: model.Config{RateHz: 60, Noise: -0.1}},
		{name: "noise too high", cfg: model.Config{RateHz: 60, Noise: maxNoise + 0.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateConfig(tc.cfg)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error for %+v", tc.cfg)
			}
		})
	}
}

func TestParseTraceID(t *testing.T) {
	for arg, want := range map[string]int64{"7": 7, "#12": 12} {
		got, err := parseTraceID(arg)
		if err != nil || got != want {
			t.Fatalf("parseTraceID(%q) = %d, %v", arg, got, err)
		}
	}
	for _, arg := range []string{"", "0", "-3", "abc"} {
		if _, err := parseTraceID(arg); err == nil {
			t.Fatalf("expected error for %q", arg)
		}
	}
}

func TestApplyConfigKeepsExplicitFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.Flags().Set("rate", "30"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	fileRate := 120
	fileSource := "wave"
	applyIntConfig(cmd, "rate", &runRate, &fileRate)
	applyStringConfig(cmd, "source", &runSource, &fileSource)
	if runRate != 30 {
		t.Fatalf("expected flag rate 30 to win, got %d", runRate)
	}
	if runSource != "wave" {
		t.Fatalf("expected config source wave, got %q", runSource)
	}
}

func TestStatsViewportDefaultsToRecorded(t *testing.T) {
	cmd := newStatsCmd()
	vp, err := statsViewport(cmd)
	if err != nil || vp != (motion.Viewport{}) {
		t.Fatalf("expected zero viewport without flags, got %+v (%v)", vp, err)
	}

	if err := cmd.Flags().Set("width", "3200"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	vp, err = statsViewport(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vp.Width != 3200 || vp.Height != stats.DefaultViewport.Height {
		t.Fatalf("expected 3200 wide default-height viewport, got %+v", vp)
	}

	if err := cmd.Flags().Set("height", "100"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if _, err := statsViewport(cmd); err == nil {
		t.Fatalf("expected error for a viewport smaller than the ball")
	}
}
