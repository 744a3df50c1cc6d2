package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/ztrue/tracerr"

	"progallerydl/internal/album"
	"progallerydl/internal/config"
	"progallerydl/internal/gallery"
	"progallerydl/internal/logging"
	"progallerydl/internal/store"
)

type Args struct {
	Url            string        `arg:"positional" help:"URL of the page hosting the slideshow gallery"`
	OutputFolder   string        `arg:"-o" help:"(Optional) Output folder for downloaded images"`
	ConfigFile     string        `arg:"--config" help:"(Optional) Path to a YAML config file"`
	MaxSlides      int           `arg:"--max-slides" help:"(Optional) Safety cap on the number of slides to traverse"`
	SettleAttempts int           `arg:"--settle-attempts" help:"(Optional) Attempts to wait for a slide transition to settle"`
	SettleDelay    time.Duration `arg:"--settle-delay" help:"(Optional) Delay between settle attempts, e.g. 1500ms"`
	Album          bool          `arg:"-a,--album" help:"(Optional) Assemble the downloaded images into a PDF album"`
	Force          bool          `arg:"-f" help:"(Optional) Overwrite an existing album PDF"`
	TerminalUI     bool          `arg:"-t,--termui" help:"(Optional) Use the terminal UI instead of command line arguments"`
	LogLevel       string        `arg:"--log-level" help:"(Optional) Log level: debug, info, warn, error"`
}

// mergeArgs folds command line flags over the loaded configuration. Flags win
// over both the YAML file and environment overrides.
func mergeArgs(cfg *config.Config, args *Args) {
	if args.Url != "" {
		cfg.Gallery.URL = args.Url
	}
	if args.OutputFolder != "" {
		cfg.Output.Directory = args.OutputFolder
	}
	if args.MaxSlides > 0 {
		cfg.Gallery.MaxSlides = args.MaxSlides
	}
	if args.SettleAttempts > 0 {
		cfg.Gallery.SettleAttempts = args.SettleAttempts
	}
	if args.SettleDelay > 0 {
		cfg.Gallery.SettleDelay = args.SettleDelay
	}
	if args.Album {
		cfg.Output.Album = true
	}
	if args.Force {
		cfg.Output.Force = true
	}
	if args.LogLevel != "" {
		cfg.Logging.Level = args.LogLevel
	}
}

// downloadGallery runs a full session: open the slideshow, walk it to the
// end while downloading whatever is missing locally, then optionally build
// the album PDF.
func downloadGallery(ctx context.Context, cfg *config.Config) error {
	log, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return tracerr.Wrap(err)
	}

	info := color.New(color.FgCyan).SprintFunc()
	success := color.New(color.FgGreen).SprintFunc()

	outputDir, err := filepath.Abs(cfg.Output.Directory)
	if err != nil {
		return tracerr.Wrap(err)
	}

	assets, err := store.Open(outputDir)
	if err != nil {
		return tracerr.Wrap(err)
	}

	if assets.Len() > 0 {
		fmt.Printf("%s Found %d images already saved in %s\n", info("INFO:"), assets.Len(), outputDir)
	}

	session, err := gallery.NewSession(ctx, cfg.Browser, log)
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer session.Close()

	if err := session.OpenSlideshow(cfg.Gallery.URL); err != nil {
		return tracerr.Wrap(err)
	}

	expected := 0
	meta, err := session.WarmupMetadata(cfg.Gallery.ComponentID)
	if err != nil {
		log.Warn().Err(err).Msg("warmup metadata unavailable, item count signal disabled")
	} else {
		expected = meta.TotalItems
		fmt.Printf("%s Gallery %s declares %d images\n", info("INFO:"), meta.GalleryID, expected)
	}

	var bar *progressbar.ProgressBar
	if expected > 0 {
		bar = progressbar.NewOptions(expected,
			progressbar.OptionSetDescription("Walking slideshow"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(50),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}

	runner := &gallery.Runner{
		Nav:            gallery.NewNavigator(session, cfg.Gallery, log),
		Fetch:          gallery.NewDownloader(assets, cfg.Browser.UserAgent, log),
		Track:          gallery.NewTracker(expected, cfg.Gallery.MaxSlides),
		Log:            log,
		WarmupAdvances: cfg.Gallery.WarmupAdvances,
	}
	if bar != nil {
		runner.OnSlide = func(gallery.Outcome) {
			_ = bar.Add(1)
		}
	}

	start := time.Now()
	sum, err := runner.Run(ctx)
	if bar != nil {
		_ = bar.Close()
	}
	if err != nil {
		return tracerr.Wrap(err)
	}

	fmt.Printf("%s Traversed %d slides in %s (%d downloaded, %d already present, %d failed)\n",
		success("SUCCESS:"), sum.Slides, time.Since(start).Round(time.Second),
		sum.Downloaded, sum.Skipped, sum.Failed)
	fmt.Printf("%s Stopped: %s\n", info("INFO:"), sum.StopReason)
	fmt.Printf("%s Images saved to %s\n", info("INFO:"), outputDir)

	if cfg.Output.Album {
		images, err := album.Collect(outputDir)
		if err != nil {
			return tracerr.Wrap(err)
		}

		pdfPath := cfg.Output.AlbumPath
		if !filepath.IsAbs(pdfPath) {
			pdfPath = filepath.Join(outputDir, pdfPath)
		}

		if err := album.Build(images, pdfPath, cfg.Output.Force); err != nil {
			return tracerr.Wrap(err)
		}
		fmt.Printf("%s Album written to %s\n", success("SUCCESS:"), pdfPath)
	}

	return nil
}

func mainWithErrors() error {
	var args Args
	argP := arg.MustParse(&args)

	if args.TerminalUI {
		RunTerminalUI()
		return nil
	}

	cfg, err := config.Load(args.ConfigFile)
	if err != nil {
		return err
	}
	mergeArgs(cfg, &args)

	if cfg.Gallery.URL == "" {
		argP.WriteHelp(os.Stderr)
		return fmt.Errorf("gallery URL is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ctrl+C cancels the context; the deferred session close still tears
	// the browser down.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return downloadGallery(ctx, cfg)
}

func main() {
	if err := mainWithErrors(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
