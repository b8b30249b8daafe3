package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/tuireact/internal/config"
	"github.com/verte-zerg/tuireact/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template is not valid TOML: %v", err)
	}
	if cfg.Game.Lives != nil || cfg.Player.Name != nil {
		t.Fatalf("expected all template values commented out")
	}

	var uncommented strings.Builder
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		trimmed := strings.TrimPrefix(line, "# ")
		if strings.Contains(trimmed, " = ") {
			line = trimmed
		}
		uncommented.WriteString(line + "\n")
	}
	if _, err := toml.Decode(uncommented.String(), &cfg); err != nil {
		t.Fatalf("uncommented template is not valid TOML: %v", err)
	}
	if cfg.Game.Lives == nil || *cfg.Game.Lives != 3 {
		t.Fatalf("expected lives=3 in template, got %v", cfg.Game.Lives)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(model.Config{Name: "ada", Server: "http://localhost:8787"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateConfig(model.Config{Name: strings.Repeat("x", 21)}); err == nil {
		t.Fatalf("expected error for long name")
	}
	if err := validateConfig(model.Config{Server: "localhost:8787"}); err == nil {
		t.Fatalf("expected error for server without scheme")
	}
}

func TestEnvOr(t *testing.T) {
	file := "from-file"
	t.Setenv(envServeAddr, "")
	if got := envOr(envServeAddr, &file); got != &file {
		t.Fatalf("expected file value when env is empty")
	}
	t.Setenv(envServeAddr, ":9000")
	if got := envOr(envServeAddr, &file); got == nil || *got != ":9000" {
		t.Fatalf("expected env value, got %v", got)
	}
}

func TestLevelsCommandPrintsBuiltins(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	levelsPath = ""
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"levels"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("levels command: %v", err)
	}
	for _, want := range []string{"warmup", "master", "2000-4000"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}
