package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nodeacademy/internal/client"
	"nodeacademy/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:          "nodeacademy",
	Short:        "Terminal client for Node Academy",
	Long:         "Take Node Academy lesson tests from the terminal and sync your progress with the server.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			level = "debug"
		}
		log, err := logger.New("local", level)
		if err != nil {
			return err
		}
		logger.SetDefault(log)
		cmd.SetContext(logger.NewContext(cmd.Context(), log))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Default().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("api", "", "API base URL (overrides NODEACADEMY_API env var)")
	rootCmd.PersistentFlags().String("token-file", "", "Where the login token is kept (defaults to the user config dir)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log HTTP requests")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(achievementsCmd)
}

// resolveAPIURL returns the base URL using --api (highest priority), then
// NODEACADEMY_API, then the local default.
func resolveAPIURL(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("api"); u != "" {
		return u
	}
	if u := os.Getenv("NODEACADEMY_API"); u != "" {
		return u
	}
	return "http://localhost:3000"
}

func newClient(cmd *cobra.Command) (*client.Client, error) {
	path, _ := cmd.Flags().GetString("token-file")
	if path == "" {
		var err error
		if path, err = client.DefaultTokenPath(); err != nil {
			return nil, err
		}
	}

	baseURL := resolveAPIURL(cmd)
	logger.FromContext(cmd.Context()).Debug("using api", zap.String("url", baseURL), zap.String("token_file", path))
	return client.New(baseURL, client.WithTokenStore(client.FileTokenStore{Path: path})), nil
}
