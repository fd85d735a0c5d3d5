package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openmined/fileagent/internal/server"
	"github.com/openmined/fileagent/internal/server/auth"
	"github.com/openmined/fileagent/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	defaultRootDir = filepath.Join(home, "FileAgent")
	defaultDBPath  = filepath.Join(home, ".fileagent", "state.db")
	configFileName = "config"
)

var rootCmd = &cobra.Command{
	Use:     "fileagent",
	Short:   "FileAgent Server CLI",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config := configFromViper()
		if err := config.Validate(); err != nil {
			return err
		}
		cmd.SilenceUsage = true

		s, err := server.New(config)
		if err != nil {
			return err
		}

		defer slog.Info("Bye!")
		return s.Start(cmd.Context())
	},
}

// tokenCmd mints a development access token for a subject, signed with the
// configured secret. Production tokens come from the identity provider.
var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Mint a development access token",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := viper.GetString("auth.access_token_secret")
		if secret == "" {
			return errors.New("auth `access_token_secret` is not configured")
		}
		expiry := viper.GetDuration("auth.access_token_expiry")
		if expiry == 0 {
			expiry = 24 * time.Hour
		}

		token, err := auth.NewAccessToken(args[0], viper.GetString("auth.token_issuer"), secret, expiry)
		if err != nil {
			return err
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("bind", "b", server.DefaultAddr, "Address to bind the server")
	rootCmd.Flags().StringP("root", "r", defaultRootDir, "Root directory served by the agent")
	rootCmd.Flags().String("db", defaultDBPath, "Path to the sqlite database")
	rootCmd.Flags().String("cert", "", "Path to the TLS certificate file")
	rootCmd.Flags().String("key", "", "Path to the TLS key file")
	rootCmd.Flags().Bool("enforce", false, "Gate file operations on the acl engine")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file")

	rootCmd.AddCommand(tokenCmd)
}

func main() {
	// local development settings, ignored when absent
	godotenv.Load()

	handler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(handler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".fileagent"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	if flags := cmd.Flags(); flags != nil {
		viper.BindPFlag("http.addr", flags.Lookup("bind"))
		viper.BindPFlag("http.cert_file", flags.Lookup("cert"))
		viper.BindPFlag("http.key_file", flags.Lookup("key"))
		viper.BindPFlag("root_dir", flags.Lookup("root"))
		viper.BindPFlag("db_path", flags.Lookup("db"))
		viper.BindPFlag("acl.enforce", flags.Lookup("enforce"))
	}

	viper.SetEnvPrefix("FILEAGENT")
	viper.AutomaticEnv()

	return nil
}

func configFromViper() *server.Config {
	return &server.Config{
		HTTP: server.HTTPConfig{
			Addr:      viper.GetString("http.addr"),
			CertFile:  viper.GetString("http.cert_file"),
			KeyFile:   viper.GetString("http.key_file"),
			RateLimit: viper.GetString("http.rate_limit"),
		},
		Auth: auth.Config{
			Enabled:           viper.GetBool("auth.enabled"),
			TokenIssuer:       viper.GetString("auth.token_issuer"),
			AccessTokenSecret: viper.GetString("auth.access_token_secret"),
			AccessTokenExpiry: viper.GetDuration("auth.access_token_expiry"),
		},
		ACL: server.ACLConfig{
			Enforce: viper.GetBool("acl.enforce"),
		},
		RootDir: viper.GetString("root_dir"),
		DBPath:  viper.GetString("db_path"),
	}
}
