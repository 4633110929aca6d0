package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dot5enko/repak/config"
	"github.com/dot5enko/repak/errdefs"
	"github.com/dot5enko/repak/manager"
	"github.com/dot5enko/repak/manifest"
	"github.com/dot5enko/repak/schema"
)

var cmdBuild = &cobra.Command{
	Use:   "build <manifest>",
	Short: "Compile the assets of a manifest into a container",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

var flagBuild struct {
	Config    string
	Out       string
	Profile   string
	Compress  bool
	Timestamp int64
	LogLevel  string
}

func init() {
	addBuildFlags(cmdBuild.Flags())
}

func addBuildFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&flagBuild.Config, "config", "c", config.DefaultFile, "Build settings file")
	fs.StringVarP(&flagBuild.Out, "out", "o", "", "Output directory, overrides the manifest")
	fs.StringVarP(&flagBuild.Profile, "profile", "p", "", "Container layout: v7 or v8")
	fs.BoolVar(&flagBuild.Compress, "compress", false, "Compress everything after the header with lz4")
	fs.Int64Var(&flagBuild.Timestamp, "timestamp", 0, "Creation time as unix seconds, for reproducible builds")
	fs.StringVar(&flagBuild.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadBuildConfig applies the command line on top of the config file.
func loadBuildConfig(fs *pflag.FlagSet) (config.Config, error) {

	cfg, err := config.Load(flagBuild.Config, !fs.Changed("config"))
	if err != nil {
		return cfg, err
	}

	if fs.Changed("out") {
		cfg.OutputDir = flagBuild.Out
	}
	if fs.Changed("compress") {
		cfg.Compress = flagBuild.Compress
	}
	if fs.Changed("timestamp") {
		cfg.Timestamp = flagBuild.Timestamp
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = flagBuild.LogLevel
	}
	if fs.Changed("profile") {
		profile, err := parseProfileFlag(flagBuild.Profile)
		if err != nil {
			return cfg, err
		}
		cfg.Profile = int(profile)
	}

	return cfg, cfg.Validate()
}

func parseProfileFlag(s string) (schema.Profile, error) {
	version, err := strconv.Atoi(strings.TrimPrefix(strings.ToLower(s), "v"))
	if err != nil {
		return 0, errdefs.Validationf("invalid profile %q, expected v7 or v8", s)
	}

	profile, err := schema.ParseProfile(version)
	if err != nil {
		return 0, errdefs.WrapValidation(err, "profile")
	}
	return profile, nil
}

func runBuild(cmd *cobra.Command, args []string) error {

	cfg, err := loadBuildConfig(cmd.Flags())
	if err != nil {
		return err
	}

	if err = setupLogging(cfg.LogLevel); err != nil {
		return err
	}

	mf, err := manifest.Load(args[0])
	if err != nil {
		return err
	}

	mc := manager.ManagerConfig{
		Profile:        schema.Profile(cfg.Profile),
		Compress:       cfg.Compress,
		OutputDir:      cfg.OutputDir,
		PreloadWorkers: cfg.PreloadWorkers,
		Logger:         logrus.NewEntry(logrus.StandardLogger()),
	}
	if cfg.Timestamp != 0 {
		mc.Timestamp = time.Unix(cfg.Timestamp, 0)
	}

	started := time.Now()

	result, err := manager.New(mc).Build(context.Background(), mf)
	if err != nil {
		return err
	}

	color.Green("Built %s in %s", result.OutputPath, time.Since(started).Round(time.Millisecond))
	field("build", result.BuildID)
	field("profile", result.Stats.Profile)
	field("assets", fmt.Sprintf("%d written, %d skipped", len(result.Encoded), len(result.Skipped)))
	field("pages", result.Stats.Segments)
	field("descriptors", result.Stats.Descriptors+result.Stats.GuidDescriptors)
	field("relations", result.Stats.Relations)
	field("page data", humanize.Bytes(result.Stats.PageBytes))
	field("size", humanize.Bytes(uint64(result.Size)))
	field("blake3", fmt.Sprintf("%x", result.Digest))
	if result.StarpakPath != "" {
		field("starpak", result.StarpakPath)
	}

	for _, name := range result.Skipped {
		color.Yellow("  skipped %s", name)
	}

	return nil
}
