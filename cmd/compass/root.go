// Command compass is the catalog CLI: it runs the API server and talks
// to it as a client, with the session cached on disk between runs.
package main

import (
	"os"
	"path/filepath"

	"github.com/radarhq/compass"
	"github.com/radarhq/compass/client"
	"github.com/radarhq/compass/session"
	"github.com/radarhq/compass/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "compass",
		Short:         "Tech radar catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("api-url", "http://localhost:8080", "base URL of the catalog API")
	root.PersistentFlags().String("state", "", "path of the session state file")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")

	viper.SetEnvPrefix("COMPASS")
	viper.AutomaticEnv()
	viper.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("state", root.PersistentFlags().Lookup("state"))
	viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	viper.SetConfigName(".compass")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")
	// A missing config file is fine; flags and env cover everything.
	_ = viper.ReadInConfig()

	root.AddCommand(
		newServeCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newSolutionsCmd(),
		newHistoryCmd(),
		newRadarCmd(),
	)
	return root
}

func cliLogger() compass.Logger {
	if viper.GetBool("verbose") {
		return compass.DefaultLogger()
	}
	return quietLogger{}
}

// quietLogger drops debug and info chatter; warnings and errors still
// reach the default logger.
type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(format string, args ...any) {
	compass.DefaultLogger().Warn(format, args...)
}
func (quietLogger) Error(format string, args ...any) {
	compass.DefaultLogger().Error(format, args...)
}

func statePath() string {
	if p := viper.GetString("state"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "compass", "state.json")
}

// buildSession wires the file-backed store, the HTTP client, and the
// session manager together. The client reads its bearer token from the
// manager, and a 401 anywhere invalidates the session.
func buildSession() (*session.Manager, *client.Client, error) {
	store, err := storage.OpenFile(statePath())
	if err != nil {
		return nil, nil, err
	}

	log := cliLogger()

	var mgr *session.Manager
	api := client.New(viper.GetString("api_url"),
		client.WithLogger(log),
		client.WithTokenSource(func() string {
			if mgr == nil {
				return ""
			}
			return mgr.Token()
		}),
	)
	mgr = session.NewManager(store, api.Auth,
		session.WithLogger(log),
		session.WithNavigator(cliNavigator{log: log}),
	)
	api.SetUnauthorizedHandler(mgr.HandleUnauthorized)
	return mgr, api, nil
}

var _ session.AuthAPI = (*client.AuthService)(nil)

// cliNavigator maps navigation onto log lines; the CLI has no routes to
// change.
type cliNavigator struct {
	log compass.Logger
}

func (n cliNavigator) Navigate(target string) {
	n.log.Debug("navigate: %s", target)
}

func (n cliNavigator) ReturnURL() string { return "" }
