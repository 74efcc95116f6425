package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"opportunity-board/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "opportunity-board",
	Short: "Job, internship and event listing board",
	Long:  "Serves the public listing board and admin console, and maintains its store.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func initConfig() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error reading .env: %v\n", err)
	}

	v := viper.GetViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/opportunity-board")
		v.AddConfigPath("configs")
	}
	// OB_STORE_DRIVER overrides store.driver, and so on.
	v.SetEnvPrefix("OB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}
	appCfg.FillDefaults()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: appCfg.App.SlogLevel(),
	})))
}

// AutomaticEnv only covers keys viper already knows about, so keys that may
// be absent from the config file are bound explicitly.
func bindEnvKeys(v *viper.Viper) {
	for _, k := range []string{
		"app.log_level", "app.site_name", "app.base_url",
		"http.addr", "http.cookie_secure",
		"store.driver", "store.collection_prefix", "store.postgres_url", "store.sqlite_path",
		"redis.url", "redis.addr", "redis.username", "redis.password", "redis.db",
		"events.enabled", "events.channel",
		"openai.api_key", "openai.model", "openai.base_url", "openai.language",
		"digest.enabled", "digest.output_dir",
	} {
		_ = v.BindEnv(k)
	}
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}
