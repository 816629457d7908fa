package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LiMingML/ToolProject/filestat"
	"github.com/LiMingML/ToolProject/heatmap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// !!!!! This MUST match the app name given in the run configuration !!!!!
const version = "1_0_0"

// Exit codes, one per failure class.
const (
	exitFailure = 1
	exitConfig  = 2
	exitMissing = 3
	exitParse   = 4
	exitRegion  = 5
	exitRender  = 6
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\n\t%v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var (
		ce  *ConfigError
		nf  *heatmap.FileNotFoundError
		pe  *heatmap.ParseError
		me  *heatmap.MalformedGridError
		oob *heatmap.RegionOutOfBoundsError
		re  *heatmap.RenderError
	)
	switch {
	case errors.As(err, &ce):
		return exitConfig
	case errors.As(err, &nf):
		return exitMissing
	case errors.As(err, &pe), errors.As(err, &me):
		return exitParse
	case errors.As(err, &oob):
		return exitRegion
	case errors.As(err, &re):
		return exitRender
	}
	return exitFailure
}

// cli holds state shared by every subcommand.
type cli struct {
	verbose bool
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:     "toolproject",
		Short:   "Heatmap rendering for elemental-loading grids, plus folder statistics",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(c.verbose)
			if err != nil {
				return err
			}
			c.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.newGUICmd(), c.newRenderCmd(), c.newFilestatCmd())
	return root
}

// newLogger builds the console logger used by every command.
func newLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      verbose,
		Encoding:         "console",
		EncoderConfig:    encCfg,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}

func (c *cli) newGUICmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "Open the configuration editor with one button per figure layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(configPath, c.log)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "configuration file (json5)")
	return cmd
}

type renderOptions struct {
	configPath string
	dataPath   string
	sep        string
	out        string
}

func (c *cli) newRenderCmd() *cobra.Command {
	var opts renderOptions
	var names []string
	for _, m := range heatmap.Modes() {
		names = append(names, m.String())
	}

	cmd := &cobra.Command{
		Use:   "render <mode|all>",
		Short: "Render one figure layout (or all six) from the configured data file",
		Long: "Render a heatmap figure next to the data file.\n\nModes: " +
			strings.Join(names, ", ") + ", or all.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.render(args[0], opts, cmd.Flags().Changed("sep"))
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "configuration file (json5)")
	f.StringVar(&opts.dataPath, "data", "", "data file, overrides filepath in the configuration")
	f.StringVar(&opts.sep, "sep", "", "field delimiter, overrides sep in the configuration")
	f.StringVarP(&opts.out, "out", "o", "", "output PNG path (single mode only)")
	return cmd
}

func (c *cli) render(modeArg string, opts renderOptions, sepSet bool) error {
	cfg, found, err := LoadConfigOrDefault(opts.configPath)
	if err != nil {
		return err
	}
	if !found {
		c.log.Info("configuration file not found, using defaults", zap.String("path", opts.configPath))
	}
	if opts.dataPath != "" {
		cfg.FilePath = opts.dataPath
	}
	if sepSet {
		cfg.Sep = opts.sep
	}
	if opts.out != "" {
		cfg.Output = opts.out
	}

	req, err := cfg.Request()
	if err != nil {
		return &ConfigError{Path: opts.configPath, Key: "region", Err: err}
	}
	composer := heatmap.NewComposer(c.log)

	start := time.Now()
	if strings.EqualFold(modeArg, "all") {
		if opts.out != "" {
			return errors.New("--out cannot be combined with all")
		}
		outs, err := composer.RunAll(heatmap.Modes(), req)
		for _, out := range outs {
			fmt.Println(out)
		}
		if err != nil {
			return err
		}
	} else {
		mode, err := heatmap.ParseMode(modeArg)
		if err != nil {
			return err
		}
		out, err := composer.Run(mode, req)
		if err != nil {
			return err
		}
		fmt.Println(out)
	}
	c.log.Debug("render finished", zap.Duration("took", time.Since(start)))
	return nil
}

type filestatOptions struct {
	exclude string
	report  string
	top     int
}

func (c *cli) newFilestatCmd() *cobra.Command {
	var opts filestatOptions
	cmd := &cobra.Command{
		Use:   "filestat <dir>",
		Short: "Summarise the files under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.filestat(args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.exclude, "exclude", "e", "exclude.json", "json5 file listing exclude_folders")
	f.StringVarP(&opts.report, "report", "r", "", "write an HTML chart report to this path")
	f.IntVarP(&opts.top, "top", "n", filestat.DefaultTopN, "number of largest files to list")
	return cmd
}

func (c *cli) filestat(root string, opts filestatOptions) (err error) {
	exclude, err := filestat.LoadExclude(opts.exclude)
	if err != nil {
		c.log.Warn("ignoring exclude file", zap.String("path", opts.exclude), zap.Error(err))
		exclude = filestat.NewExcludeSet(nil)
	}

	start := time.Now()
	st, err := filestat.Analyze(root, exclude, opts.top)
	if err != nil {
		return err
	}
	c.log.Debug("folder analysed",
		zap.String("root", root),
		zap.Int("excluded_names", exclude.Len()),
		zap.Duration("took", time.Since(start)))

	fmt.Printf("Total files: %d\n", st.TotalFiles)
	fmt.Printf("Hidden files: %d\n", st.HiddenFiles)
	fmt.Println("\nFile types:")
	for _, tc := range st.TopTypes(0) {
		fmt.Printf("  %-12s %d\n", tc.Ext, tc.Count)
	}
	fmt.Printf("\nLargest %d files:\n", len(st.Largest))
	for i, fs := range st.Largest {
		fmt.Printf("  %2d. %10s  %s\n", i+1, filestat.HumanSize(fs.Size), fs.Path)
	}

	if opts.report == "" {
		return nil
	}
	f, err := os.Create(opts.report)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := filestat.WriteReport(f, st); err != nil {
		return err
	}
	c.log.Info("report written", zap.String("path", opts.report))
	return nil
}
