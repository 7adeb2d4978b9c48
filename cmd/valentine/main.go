package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DaanHessen/valentine-tui/internal/audio"
	"github.com/DaanHessen/valentine-tui/internal/media"
	"github.com/DaanHessen/valentine-tui/internal/text"
	"github.com/DaanHessen/valentine-tui/internal/ui"
	"github.com/DaanHessen/valentine-tui/internal/util"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// flags mirrors util.Config; only flags set on the command line override.
type flags struct {
	config      string
	name        string
	nickname    string
	manifest    string
	assets      string
	seed        string
	theme       string
	glamour     string
	script      string
	music       string
	player      string
	logFile     string
	debug       bool
	concurrency int
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	def := util.Default()
	root := &cobra.Command{
		Use:          "valentine",
		Short:        "A scripted proposal, played out in the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			return present(cmd.Context(), cfg)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "valentine.yaml", "YAML config file")
	pf.StringVar(&f.name, "name", def.Name, "who is being asked")
	pf.StringVar(&f.nickname, "nickname", def.Nickname, "pet name used in the intro")
	pf.StringVar(&f.manifest, "manifest", def.Manifest, "JSON photo list")
	pf.StringVar(&f.assets, "assets", def.Assets, "directory photo paths resolve against")
	pf.StringVar(&f.seed, "seed", "", "seed for the evasion and confetti streams (random if empty)")
	pf.StringVar(&f.theme, "theme", def.Theme, "colour theme: rose|midnight|dracula|gruvbox")
	pf.StringVar(&f.glamour, "glamour-style", def.GlamourStyle, "markdown style: auto|dark|light|notty")
	pf.StringVar(&f.script, "script", "", "YAML file overriding the presentation copy")
	pf.StringVar(&f.music, "music", def.Music, "background music file")
	pf.StringVar(&f.player, "player", def.Player, "command used to play the music file")
	pf.StringVar(&f.logFile, "log", "", "write logs to this file")
	pf.BoolVar(&f.debug, "debug", false, "debug level logging")
	pf.IntVar(&f.concurrency, "probe-concurrency", def.ProbeConcurrency, "photos probed at once")

	root.AddCommand(newPhotosCmd(f), newKeepsakeCmd(f), newVersionCmd())
	return root
}

// resolve layers defaults, the YAML file, VALENTINE_* variables and explicit flags.
func (f *flags) resolve(cmd *cobra.Command) (util.Config, error) {
	cfg, err := util.Load(f.config)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.LookupEnv)

	set := cmd.Flags().Changed
	str := map[string]struct {
		dst *string
		val string
	}{
		"name":          {&cfg.Name, f.name},
		"nickname":      {&cfg.Nickname, f.nickname},
		"manifest":      {&cfg.Manifest, f.manifest},
		"assets":        {&cfg.Assets, f.assets},
		"seed":          {&cfg.SeedText, f.seed},
		"theme":         {&cfg.Theme, f.theme},
		"glamour-style": {&cfg.GlamourStyle, f.glamour},
		"script":        {&cfg.Script, f.script},
		"music":         {&cfg.Music, f.music},
		"player":        {&cfg.Player, f.player},
		"log":           {&cfg.LogFile, f.logFile},
	}
	for name, s := range str {
		if set(name) {
			*s.dst = s.val
		}
	}
	if set("debug") {
		cfg.Debug = f.debug
	}
	if set("probe-concurrency") {
		cfg.ProbeConcurrency = f.concurrency
	}
	return cfg, nil
}

func loadScript(cfg util.Config) (text.Script, error) {
	def := text.Default(cfg.Name, cfg.Nickname)
	if cfg.Script == "" {
		return def, nil
	}
	s, err := text.Load(cfg.Script, cfg.Name, cfg.Nickname)
	if err != nil {
		return def, err
	}
	return s.WithFallback(def), nil
}

func present(ctx context.Context, cfg util.Config) error {
	logger, err := util.NewLogger(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	script, err := loadScript(cfg)
	if err != nil {
		return err
	}
	candidates, err := media.LoadManifest(cfg.Manifest)
	if err != nil {
		return err
	}
	logger.Info("starting presentation",
		zap.String("version", version),
		zap.Int("candidates", len(candidates)),
		zap.String("theme", cfg.Theme),
	)

	var player audio.Player
	if p, err := audio.NewCommandPlayer(cfg.Player, cfg.Music); err != nil {
		logger.Info("music disabled", zap.Error(err))
	} else {
		player = p
	}
	music := audio.NewToggle(player, logger)
	defer func() {
		if err := music.Close(); err != nil {
			logger.Warn("music shutdown", zap.Error(err))
		}
	}()

	err = ui.Run(ctx, ui.Options{
		Config:     cfg,
		Script:     script,
		Candidates: candidates,
		Validator:  media.NewValidator(media.FSProber{FS: os.DirFS(cfg.Assets)}, cfg.ProbeConcurrency, logger),
		Music:      music,
		Logger:     logger,
	})
	return errors.Wrap(err, "presentation")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "valentine-tui", version)
		},
	}
}
