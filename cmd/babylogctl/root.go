package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"baby-care-log/internal/adapters/commandapi"
	"baby-care-log/internal/platform/config"
	"baby-care-log/internal/platform/httpclient"
	"baby-care-log/internal/platform/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	serverURL  string
	userID     string
	token      string
	profileID  string
	verbose    bool

	cfg    config.Config
	log    logger.Logger
	client *commandapi.Client
)

var rootCmd = &cobra.Command{
	Use:   "babylogctl",
	Short: "Cliente de línea de comandos del registro de cuidados",
	Long: `babylogctl habla con el endpoint de comandos de baby-care-log.
Las ediciones inline (events step) pasan por el mismo debounce que la grilla.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		override := func(flag string, dst *string, v string) {
			if cmd.Flags().Changed(flag) {
				*dst = strings.TrimSpace(v)
			}
		}
		override("server", &cfg.Client.Server, serverURL)
		override("user", &cfg.Client.User, userID)
		override("token", &cfg.Client.Token, token)
		override("profile", &cfg.Client.Profile, profileID)

		if verbose {
			cfg.Log.Level = "debug"
		}
		log = cfg.Log.Logger(os.Stderr)

		client, err = commandapi.New(commandapi.Options{
			BaseURL:     cfg.Client.Server,
			Timeout:     cfg.Client.Timeout.Std(),
			Token:       cfg.Client.Token,
			DebugUserID: cfg.Client.User,
		})
		return err
	},
}

// Execute corre el comando raíz. Lo llama main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, httpclient.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "hint: use --token (or --user against a dev server)")
		}
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML de configuración (o CONFIG_FILE)")
	pf.StringVar(&serverURL, "server", "", "URL del server (o BABYLOG_SERVER)")
	pf.StringVar(&userID, "user", "", "usuario para X-Debug-User-ID en modo dev (o BABYLOG_USER)")
	pf.StringVar(&token, "token", "", "bearer token (o BABYLOG_TOKEN)")
	pf.StringVar(&profileID, "profile", "", "perfil sobre el que operar (o BABYLOG_PROFILE)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "logs de debug en stderr")
}

func requireProfile() (string, error) {
	if strings.TrimSpace(cfg.Client.Profile) == "" {
		return "", fmt.Errorf("profile required: use --profile or BABYLOG_PROFILE")
	}
	return cfg.Client.Profile, nil
}
