package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rosterd",
		Short: "Employee-record management API server",
		Long: `Rosterd serves a REST API for managing employee records, protected by
JWT administrator authentication. One binary, embedded storage by default,
or point it at PostgreSQL/MySQL via configuration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./rosterd.yaml)")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newServeCmd(version))
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("rosterd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.rosterd")
	}

	viper.SetEnvPrefix("ROSTERD")
	viper.AutomaticEnv()
	viper.ReadInConfig() // Ignore error - config file is optional

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.cors_origins", []string{"*"})
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.conn_max_idle_time", "1m")
	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("auth.bootstrap_username", "admin")
	viper.SetDefault("auth.bootstrap_password", "admin123")
	viper.SetDefault("auth.login_rate_attempts", 5)
	viper.SetDefault("auth.login_rate_window", "15m")
}
