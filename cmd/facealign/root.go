package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"facealign/internal/alignment"
	"facealign/internal/config"
	"facealign/internal/project"
	"facealign/internal/version"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// settings are the flags shared by every subcommand.
type settings struct {
	configPath    string
	logLevel      string
	template      string
	width, height int
	reflective    bool
	interpolation string
	backend       string
}

func newRootCmd() *cobra.Command {
	s := &settings{}
	root := &cobra.Command{
		Use:           "facealign",
		Short:         "Similarity-transform face alignment",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&s.configPath, "config", "c", "", "Config file (YAML or JSON)")
	pf.StringVar(&s.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	s.alignmentFlags(pf)

	root.AddCommand(estimateCmd(s), alignCmd(s), versionCmd())
	return root
}

func (s *settings) alignmentFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&s.template, "template", "t", "", "Reference template ("+joinNames()+")")
	fs.IntVar(&s.width, "width", 0, "Output crop width (0 = template width)")
	fs.IntVar(&s.height, "height", 0, "Output crop height (0 = template height)")
	fs.BoolVar(&s.reflective, "reflective", true, "Allow mirrored fits")
	fs.StringVar(&s.interpolation, "interp", "", "Interpolation (nearest, bilinear, approxbilinear, catmullrom)")
	fs.StringVar(&s.backend, "backend", "", "Warp backend (go, opencv)")
}

func joinNames() string {
	return strings.Join(alignment.TemplateNames(), ", ")
}

// load reads the config file (if any), applies flag overrides, validates
// the result and configures logging.
func (s *settings) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if s.configPath != "" {
		loaded, err := config.LoadFromFile(s.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = s.logLevel
	}
	if flags.Changed("template") {
		cfg.Alignment.Template = s.template
	}
	if flags.Changed("width") {
		cfg.Alignment.Width = s.width
	}
	if flags.Changed("height") {
		cfg.Alignment.Height = s.height
	}
	if flags.Changed("reflective") {
		cfg.Alignment.Reflective = s.reflective
	}
	if flags.Changed("interp") {
		cfg.Alignment.Interpolation = s.interpolation
	}
	if flags.Changed("backend") {
		cfg.Alignment.Backend = s.backend
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := setupLogging(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(lc config.LogConfig) error {
	level, err := lc.ParseLevel()
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if lc.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}

// alignmentOptions builds alignment options from the configuration and
// the project's overrides.
func alignmentOptions(cfg *config.Config, proj *project.File) (alignment.Options, error) {
	opts := alignment.DefaultOptions()

	name := cfg.Alignment.Template
	if proj.Template != "" {
		name = proj.Template
	}
	tmpl, err := alignment.LookupTemplate(name)
	if err != nil {
		return opts, err
	}
	opts.Template = tmpl
	opts.Width = cfg.Alignment.Width
	opts.Height = cfg.Alignment.Height

	if len(proj.Destination) > 0 {
		w, h := opts.Width, opts.Height
		if w == 0 || h == 0 {
			return opts, fmt.Errorf("explicit destination points need alignment.width and alignment.height")
		}
		opts.Template = alignment.Template{Name: "custom", Width: w, Height: h, Points: proj.Destination}
	}

	opts.Reflective = proj.ReflectiveOr(cfg.Alignment.Reflective)

	if opts.Interpolation, err = alignment.ParseInterpolation(cfg.Alignment.Interpolation); err != nil {
		return opts, err
	}
	if opts.Backend, err = alignment.ParseBackend(cfg.Alignment.Backend); err != nil {
		return opts, err
	}
	return opts, nil
}

func loadProject(path string) (*project.File, error) {
	proj, err := project.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if err := proj.Validate(); err != nil {
		return nil, fmt.Errorf("project %s: %w", path, err)
	}
	return proj, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
