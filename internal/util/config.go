package util

import (
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds runtime settings and flags.
type Config struct {
	Name     string `yaml:"name"`
	Nickname string `yaml:"nickname"`

	Manifest         string `yaml:"manifest"` // JSON photo list
	Assets           string `yaml:"assets"`   // root that photo src paths resolve against
	ProbeConcurrency int    `yaml:"probe_concurrency"`

	SeedText     string `yaml:"seed"`
	Theme        string `yaml:"theme"`
	GlamourStyle string `yaml:"glamour_style"` // auto|dark|light|notty|...
	Script       string `yaml:"script"`        // optional YAML script override

	Music  string `yaml:"music"`
	Player string `yaml:"player"`

	LogFile string `yaml:"log_file"`
	Debug   bool   `yaml:"debug"`
}

// EnvPrefix namespaces environment overrides, e.g. VALENTINE_NAME.
const EnvPrefix = "VALENTINE_"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Name:             "Rapunzel",
		Nickname:         "Bubu",
		Manifest:         "photo-list.json",
		Assets:           "public",
		ProbeConcurrency: 8,
		Theme:            "rose",
		GlamourStyle:     "auto",
		Music:            "public/music/bg-music.mp3",
		Player:           "mpv --no-video --really-quiet --loop=inf",
	}
}

// Load overlays the YAML file at path on the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from VALENTINE_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := map[string]*string{
		"NAME":          &c.Name,
		"NICKNAME":      &c.Nickname,
		"MANIFEST":      &c.Manifest,
		"ASSETS":        &c.Assets,
		"SEED":          &c.SeedText,
		"THEME":         &c.Theme,
		"GLAMOUR_STYLE": &c.GlamourStyle,
		"SCRIPT":        &c.Script,
		"MUSIC":         &c.Music,
		"PLAYER":        &c.Player,
		"LOG_FILE":      &c.LogFile,
	}
	for key, dst := range str {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup(EnvPrefix + "DEBUG"); ok {
		c.Debug = v == "1" || strings.EqualFold(v, "true")
	}
	if v, ok := lookup(EnvPrefix + "PROBE_CONCURRENCY"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.ProbeConcurrency = n
		}
	}
}
