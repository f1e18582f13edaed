package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ornithe-installer/internal/app"
	"ornithe-installer/internal/shared"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "ORNITHE_INSTALLER"

type RootConfig struct {
	ConfigFile  string
	LogLevel    string
	MetaURL     string
	ManifestURL string
	HTTPTimeout int
	HTTPRetries int
	CacheTTL    int
	RulesFile   string
}

func Execute() {
	root := newRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		printError(err)
		app.EmitErrorHints(err)
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "ornithe-installer",
		Short:         "Install Ornithe loader profiles and instance bundles",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(log.Logger.WithContext(ctx))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cfg.MetaURL, "meta-url", app.DefaultMetaURL, "Metadata service base URL")
	flags.StringVar(&cfg.ManifestURL, "manifest-url", app.DefaultManifestURL, "Version manifest URL")
	flags.IntVar(&cfg.HTTPTimeout, "http-timeout", 15, "HTTP timeout in seconds")
	flags.IntVar(&cfg.HTTPRetries, "http-retries", 1, "HTTP attempts per request")
	flags.IntVar(&cfg.CacheTTL, "cache-ttl", 300, "Metadata cache lifetime in seconds (0 disables)")
	flags.StringVar(&cfg.RulesFile, "rules-file", "", "Profile rules file (defaults to the built-in rules)")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("meta_url", flags.Lookup("meta-url"))
	_ = viper.BindPFlag("manifest_url", flags.Lookup("manifest-url"))
	_ = viper.BindPFlag("http_timeout", flags.Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", flags.Lookup("http-retries"))
	_ = viper.BindPFlag("cache_ttl", flags.Lookup("cache-ttl"))
	_ = viper.BindPFlag("rules_file", flags.Lookup("rules-file"))

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newInstallCommand())
	cmd.AddCommand(newSynthesizeCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("ornithe-installer")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/ornithe-installer")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

// setupLogging writes logs to stderr; stdout carries command output.
func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// settingsFromConfig reads the service settings after flags, environment
// and config file have been merged by viper.
func settingsFromConfig() app.Settings {
	return app.Settings{
		MetaURL:     viper.GetString("meta_url"),
		ManifestURL: viper.GetString("manifest_url"),
		HTTPTimeout: time.Duration(viper.GetInt("http_timeout")) * time.Second,
		HTTPRetries: viper.GetInt("http_retries"),
		CacheTTL:    time.Duration(viper.GetInt("cache_ttl")) * time.Second,
		RulesFile:   viper.GetString("rules_file"),
	}
}

var newAppService = func() app.Service {
	return app.NewService(settingsFromConfig())
}

func exitCodeForError(err error) int {
	switch shared.KindOf(err) {
	case shared.KindInvalid:
		return 2
	case shared.KindNetwork:
		return 3
	case shared.KindMalformed:
		return 4
	case shared.KindLookup:
		return 5
	case shared.KindFilesystem:
		return 6
	default:
		return 1
	}
}

func errorLabel(err error) string {
	switch shared.KindOf(err) {
	case shared.KindInvalid:
		return "invalid argument"
	case shared.KindNetwork:
		return "network failure"
	case shared.KindMalformed:
		return "malformed document"
	case shared.KindLookup:
		return "not found"
	case shared.KindFilesystem:
		return "filesystem failure"
	case shared.KindCanceled:
		return "canceled"
	default:
		return "error"
	}
}

func printError(err error) {
	log.Debug().Err(err).Msg("command failed")
	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(os.Stderr, "%s: ", errorLabel(err))
	fmt.Fprintln(os.Stderr, errorMessage(err))
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
