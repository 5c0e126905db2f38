package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pilively/plexus/internal/analysis"
	"github.com/pilively/plexus/internal/config"
	"github.com/pilively/plexus/internal/engine"
	"github.com/pilively/plexus/internal/field"
	"github.com/pilively/plexus/internal/governor"
	"github.com/pilively/plexus/internal/linker"
	"github.com/pilively/plexus/internal/quality"
	"github.com/pilively/plexus/internal/render"
	"github.com/pilively/plexus/internal/storage"
	"github.com/pilively/plexus/internal/viz"
)

var (
	dataDir    string
	configFile string
	screenW    int
	screenH    int
	fps        int
	particles  int
	presetName string
	software   bool
	benchTicks int
)

// main registers the plexus commands. Running with no subcommand
// starts the wallpaper loop, which is what the service unit does.
func main() {
	rootCmd := &cobra.Command{
		Use:   "plexus",
		Short: "particle-plexus live wallpaper renderer",
		RunE:  runWallpaper,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".plexus", "data directory for bench sessions")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the wallpaper loop",
		RunE:  runWallpaper,
	}
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().IntVar(&screenW, "width", 1920, "surface width")
		cmd.Flags().IntVar(&screenH, "height", 1080, "surface height")
		cmd.Flags().IntVar(&fps, "fps", 0, "override target fps")
		cmd.Flags().IntVar(&particles, "particles", 0, "override particle count")
		cmd.Flags().StringVar(&presetName, "preset", "", "override quality preset")
		cmd.Flags().BoolVar(&software, "software", false, "force software rendering")
	}

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "live terminal preview",
		RunE:  runPreview,
	}
	previewCmd.Flags().StringVar(&presetName, "preset", "", "quality preset")

	benchCmd := &cobra.Command{
		Use:   "bench [preset...]",
		Short: "benchmark presets with the software renderer",
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 300, "ticks per preset")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [session_id]",
		Short: "frame-time jitter analysis for a bench session",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeSession,
	}

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "list bench sessions",
		RunE:  listSessions,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list quality presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(config.Presets[name])
			}
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "validate the config file",
		RunE:  checkConfig,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "write a default config file",
		RunE:  initConfig,
	}

	rootCmd.AddCommand(runCmd, previewCmd, benchCmd, analyzeCmd, sessionsCmd, presetsCmd, checkCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file, treating a missing file as
// defaults so a fresh install renders immediately. CLI flags override
// file values.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, err := configPath()
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(path)
	if os.IsNotExist(err) {
		cfg = config.DefaultConfig()
	} else if err != nil {
		return nil, "", err
	}

	if cmd.Flags().Changed("fps") {
		cfg.Performance.TargetFPS = fps
	}
	if cmd.Flags().Changed("particles") {
		cfg.Performance.ParticleCount = particles
	}
	if cmd.Flags().Changed("preset") {
		cfg.Performance.QualityPreset = presetName
	}
	if cmd.Flags().Changed("software") && software {
		cfg.Performance.UseGPUAcceleration = false
	}
	return cfg, path, nil
}

// fallbackPreset steps one quality tier down, used when the GPU
// backend is unavailable and the CPU has to carry the frame.
func fallbackPreset(p quality.Preset) quality.Preset {
	var next quality.Preset
	switch p.Detail {
	case quality.DetailHigh:
		next = config.Presets["medium"]
	default:
		next = config.Presets["low"]
	}
	next.TargetFPS = p.TargetFPS
	return next
}

func runWallpaper(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	preset, err := cfg.Apply()
	if err != nil {
		return err
	}

	bounds := field.DefaultBounds()
	bounds.Depth = cfg.Animation.SpaceDepth

	seed := cfg.Animation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var ren render.Renderer
	if cfg.Performance.UseGPUAcceleration {
		r, err := render.NewRaylib(screenW, screenH, bounds, "plexus")
		switch {
		case errors.Is(err, render.ErrBackendUnavailable):
			log.Printf("gpu backend unavailable, falling back to software at reduced quality")
			preset = fallbackPreset(preset)
		case err != nil:
			return err
		default:
			r.SetCameraDistance(cfg.Animation.CameraDistance)
			ren = r
		}
	}
	if ren == nil {
		sw := render.NewSoftware(screenW, screenH, bounds)
		sw.SetCameraDistance(cfg.Animation.CameraDistance)
		ren = sw
	}
	defer ren.Close()

	fld := field.New(preset.ParticleCount, bounds, seed)
	gov := governor.New(preset)
	eng := engine.New(fld, linker.New(), ren, gov, engine.Options{
		Speed: cfg.Animation.Speed,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The config editor writes the file; we pick changes up live.
	// A bad edit is reported and the running preset stays active.
	go func() {
		err := config.Watch(ctx, path, func(c *config.Config, err error) {
			if err != nil {
				log.Printf("config reload rejected: %v", err)
				return
			}
			np, err := c.Apply()
			if err != nil {
				log.Printf("config reload rejected: %v", err)
				return
			}
			log.Printf("config reloaded: %s", np)
			eng.Reload(np)
		})
		if err != nil {
			log.Printf("config watch disabled: %v", err)
		}
	}()

	log.Printf("starting wallpaper loop: %s", preset)
	return eng.Run(ctx)
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	preset, err := cfg.Apply()
	if err != nil {
		return err
	}

	bounds := field.DefaultBounds()
	bounds.Depth = cfg.Animation.SpaceDepth
	seed := cfg.Animation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m := viz.NewModel(preset, bounds, seed, cfg.Animation.Speed)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func runBench(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = []string{"low", "medium", "high"}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPARTICLES\tRADIUS\tMEAN\tP95\tWORST\tEFFECTIVE FPS\tSESSION")

	bounds := field.DefaultBounds()
	for _, name := range names {
		p, ok := config.GetPreset(name)
		if !ok {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}

		frames := make([]time.Duration, 0, benchTicks)
		ctx, cancel := context.WithCancel(context.Background())

		fld := field.New(p.ParticleCount, bounds, 42)
		eng := engine.New(fld, linker.New(), render.NewSoftware(960, 540, bounds), governor.New(p),
			engine.Options{
				OnTick: func(s engine.Stats) {
					frames = append(frames, s.Duration)
					if s.Frame >= benchTicks {
						cancel()
					}
				},
			})
		if err := eng.Run(ctx); err != nil {
			cancel()
			return err
		}
		cancel()

		js := analysis.Jitter(frames)
		stats := map[string]float64{
			"mean_ms":  float64(js.Mean.Microseconds()) / 1000,
			"p95_ms":   float64(js.P95.Microseconds()) / 1000,
			"worst_ms": float64(js.Worst.Microseconds()) / 1000,
		}
		id, err := st.Save(p, frames, stats)
		if err != nil {
			return err
		}

		effective := 0.0
		if js.Mean > 0 {
			effective = float64(time.Second) / float64(js.Mean)
		}
		fmt.Fprintf(w, "%s\t%d\t%.0f\t%v\t%v\t%v\t%.0f\t%s\n",
			p.Name, p.ParticleCount, p.LinkRadius, js.Mean, js.P95, js.Worst, effective, id)
	}
	return w.Flush()
}

func analyzeSession(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frame data in session %s", args[0])
	}

	ms := make([]float64, len(frames))
	for i, d := range frames {
		ms[i] = float64(d.Microseconds()) / 1000
	}

	fmt.Printf("session: %s\n", meta.ID)
	fmt.Printf("preset: %s (%d particles, %d fps target)\n\n", meta.Preset, meta.ParticleCount, meta.TargetFPS)

	js := analysis.Jitter(frames)
	fmt.Printf("mean: %v  stddev: %v  p95: %v  worst: %v\n\n", js.Mean, js.StdDev, js.P95, js.Worst)

	ps := analysis.PowerSpectrum(ms)
	plot := ps[:len(ps)/4]
	fmt.Println(asciigraph.Plot(plot,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("frame-time power spectrum"),
	))

	if freq := analysis.DominantFrequency(ps, float64(meta.TargetFPS)); freq > 0 {
		fmt.Printf("\ndominant stutter frequency: %.2f hz\n", freq)
	}
	return nil
}

func listSessions(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	sessions, err := st.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tPARTICLES\tFRAMES\tMEAN MS")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2f\n",
			s.ID, s.Preset, s.Timestamp.Format("2006-01-02 15:04:05"),
			s.ParticleCount, s.Frames, s.Stats["mean_ms"])
	}
	return w.Flush()
}

func checkConfig(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Printf("%s: ok\n", path)
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
