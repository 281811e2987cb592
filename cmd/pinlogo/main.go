package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/pinlogo/pinlogo"
	"github.com/pinlogo/pinlogo/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

const HelpBanner = `
┌─┐┬┌┐┌┬  ┌─┐┌─┐┌─┐
├─┘││││││  │ ││ ┬│ │
┴  ┴┘└┘┴─┘└─┘└─┘└─┘

Raster logo to map pin icon converter.
    Version: %s

`

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pinlogo.PipeName, "Source image, directory or - for stdin")
	destination = flag.String("out", "icons", "Destination directory, SVG file or - for stdout")
	configFile  = flag.String("config", "", "YAML configuration file")
	reportFile  = flag.String("report", "", "HTML audit report path")
	themeFile   = flag.String("theme", "", "Theme JSON document path")
	themeURL    = flag.String("theme-url", "", "Base URL of the icons in the theme document")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	colors      = flag.Int("colors", 1, "Number of foreground colors (stacked layers)")
	distance    = flag.Float64("distance", 45, "Foreground/background color distance")
	trim        = flag.Int("trim", 10, "Border trim threshold")
	boxWidth    = flag.Float64("box-width", 12, "Target box width in viewBox units")
	boxHeight   = flag.Float64("box-height", 12, "Target box height in viewBox units")
	anchorX     = flag.Float64("anchor-x", 12, "Pin head anchor X in viewBox units")
	anchorY     = flag.Float64("anchor-y", 10, "Pin head anchor Y in viewBox units")
	turdSize    = flag.Int("turd", 2, "Speckle area suppressed by the tracer")
	tolerance   = flag.Float64("tolerance", 0.2, "Curve optimization tolerance")
	precision   = flag.Int("precision", 4, "Significant digits kept by the SVG optimizer")
	timeout     = flag.Duration("timeout", 30*time.Second, "Tracer timeout per file")
	keepSize    = flag.Bool("keep-size", false, "Keep the width and height attributes")
	keepGroups  = flag.Bool("keep-groups", false, "Keep one group per color layer")
	verbose     = flag.Bool("verbose", false, "Verbose logging")
	version     = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println(Version)
		return
	}

	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	utils.NoColor = !interactive

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		log.Fatalf(utils.DecorateText("unable to create the logger: %v", utils.ErrorMessage), err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ PINLOGO", utils.StatusMessage),
		utils.DecorateText("is converting the logos...", utils.DefaultMessage))
	spinner := utils.NewSpinner(os.Stderr, spinnerText, time.Millisecond*100, true)

	// The spinner is only shown on a terminal and never while logging verbosely.
	showSpinner := interactive && !*verbose
	if showSpinner {
		spinner.Start()
	}

	var converted, failed int
	proc := pinlogo.NewProcessor(cfg, logger)
	now := time.Now()

	sum, err := proc.Execute(ctx, &pinlogo.Ops{
		Src:      *source,
		Dst:      *destination,
		Workers:  *workers,
		Report:   *reportFile,
		Theme:    *themeFile,
		ThemeURL: *themeURL,
		OnResult: func(fr pinlogo.FileResult) {
			if fr.Err != nil {
				failed++
			} else {
				converted++
			}
			spinner.SetMessage(fmt.Sprintf("%s %s",
				utils.DecorateText("⚡ PINLOGO", utils.StatusMessage),
				utils.DecorateText(fmt.Sprintf("%s converted, %d failed...",
					utils.Plural(converted, "logo"), failed), utils.DefaultMessage),
			))
		},
	})
	spinner.Stop()

	if err != nil {
		log.Fatalf(
			utils.DecorateText("\nError converting the logos: %s", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
	}
	printSummary(sum, time.Since(now))

	if sum.Failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, if any, and applies the flags set on the command line.
func loadConfig() (pinlogo.Config, error) {
	cfg := pinlogo.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = pinlogo.LoadConfig(*configFile); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "colors":
			cfg.Analysis.PaletteSize = *colors
		case "distance":
			cfg.Analysis.ColorDistance = *distance
		case "trim":
			cfg.Analysis.TrimThreshold = *trim
		case "box-width":
			cfg.Canvas.TargetWidth = *boxWidth
		case "box-height":
			cfg.Canvas.TargetHeight = *boxHeight
		case "anchor-x":
			cfg.Canvas.AnchorX = *anchorX
		case "anchor-y":
			cfg.Canvas.AnchorY = *anchorY
		case "turd":
			cfg.Trace.TurdSize = *turdSize
		case "tolerance":
			cfg.Trace.OptTolerance = *tolerance
		case "precision":
			cfg.Output.Precision = *precision
		case "timeout":
			cfg.Trace.Timeout = *timeout
		case "keep-size":
			cfg.Output.KeepSize = *keepSize
		case "keep-groups":
			cfg.Output.KeepGroups = *keepGroups
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	if !verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return zc.Build()
}

// printSummary displays the outcome of every file followed by the batch totals.
func printSummary(sum *pinlogo.Summary, elapsed time.Duration) {
	for _, fr := range sum.Results {
		switch {
		case fr.Err != nil:
			fmt.Fprintf(os.Stderr, "%s %s\n\t%s\n",
				utils.DecorateText("✘", utils.ErrorMessage),
				fr.Source,
				utils.DecorateText(fr.Err.Error(), utils.DefaultMessage),
			)
		case fr.Result.LowConfidence:
			fmt.Fprintf(os.Stderr, "%s %s %s\n",
				utils.DecorateText("!", utils.WarningMessage),
				fr.Source,
				utils.DecorateText("no foreground found, using the fallback color", utils.WarningMessage),
			)
		case fr.Output != "":
			fmt.Fprintf(os.Stderr, "%s %s ⇢ %s\n",
				utils.DecorateText("✔", utils.SuccessMessage),
				fr.Source,
				utils.DecorateText(fr.Output, utils.SuccessMessage),
			)
		}
	}

	fmt.Fprintf(os.Stderr, "\n%s converted, %s, %s\n",
		utils.DecorateText(utils.Plural(sum.Converted, "logo"), utils.SuccessMessage),
		utils.DecorateText(fmt.Sprintf("%d failed", sum.Failed), utils.ErrorMessage),
		utils.DecorateText(fmt.Sprintf("%d low confidence", sum.LowConfidence), utils.WarningMessage),
	)
	fmt.Fprintf(os.Stderr, "Execution time: %s\n",
		utils.DecorateText(utils.FormatTime(elapsed), utils.SuccessMessage))
}
