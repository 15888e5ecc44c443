package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rosterhq/rosterd/internal/model"
	"github.com/rosterhq/rosterd/internal/server"
	"github.com/rosterhq/rosterd/internal/service"
	"github.com/rosterhq/rosterd/internal/store"
)

func newServeCmd(version string) *cobra.Command {
	var (
		port    int
		host    string
		dev     bool
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the rosterd API server",
		Long:  "Start the HTTP server that exposes the employee-record REST API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(version, host, port, dev, dataDir)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP listen port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (verbose logging)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory for the embedded SQLite database (default: ~/.rosterd)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(version, host string, port int, dev bool, dataDir string) error {
	logLevel := slog.LevelInfo
	if dev {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	st, err := openStore(dataDir)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer st.Close()
	logger.Info("store initialized", "driver", viper.GetString("database.driver"))

	jwtSecret := viper.GetString("auth.jwt_secret")
	if jwtSecret == "" {
		jwtSecret = "rosterd-dev-secret-change-me"
		logger.Warn("auth.jwt_secret not set, using insecure development secret")
	}
	authSvc := service.NewAuthService(jwtSecret, viper.GetDuration("auth.token_ttl"))

	if err := bootstrapAdmin(context.Background(), st, logger); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = host
	srvCfg.Port = port
	srvCfg.CORSOrigins = viper.GetStringSlice("server.cors_origins")
	srvCfg.Version = version
	srvCfg.LoginRateAttempts = viper.GetInt("auth.login_rate_attempts")
	srvCfg.LoginRateWindow = viper.GetDuration("auth.login_rate_window")

	srv := server.New(srvCfg, st, authSvc, logger)

	fmt.Printf("→ Rosterd %s\n", version)
	fmt.Printf("→ Listening on http://%s:%d\n", host, port)
	fmt.Printf("→ OpenAPI:  http://%s:%d/openapi.json\n", host, port)
	fmt.Printf("→ Health:   http://%s:%d/healthz\n", host, port)
	fmt.Println()

	return srv.ListenAndServe()
}

// openStore builds the store from configuration. When the driver is sqlite
// and no DSN is set, the database lives in the data directory.
func openStore(dataDir string) (*store.Store, error) {
	cfg := store.Config{
		Driver:          viper.GetString("database.driver"),
		DSN:             viper.GetString("database.dsn"),
		MaxOpenConns:    viper.GetInt("database.max_open_conns"),
		MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
		ConnMaxIdleTime: viper.GetDuration("database.conn_max_idle_time"),
	}

	if cfg.Driver == "sqlite" && cfg.DSN == "" {
		if dataDir == "" {
			home, _ := os.UserHomeDir()
			dataDir = filepath.Join(home, ".rosterd")
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		cfg.DSN = filepath.Join(dataDir, "rosterd.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	return store.Open(cfg)
}

// bootstrapAdmin auto-provisions the first administrator account when none
// exists. There is no self-registration endpoint, so a fresh install would
// otherwise be unreachable.
func bootstrapAdmin(ctx context.Context, st *store.Store, logger *slog.Logger) error {
	hasAdmin, err := st.HasAnyAdmin(ctx)
	if err != nil {
		return err
	}
	if hasAdmin {
		return nil
	}

	username := viper.GetString("auth.bootstrap_username")
	password := viper.GetString("auth.bootstrap_password")

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.Admin{
		Username:     username,
		PasswordHash: hash,
	}
	if err := st.CreateAdmin(ctx, admin); err != nil {
		return err
	}

	logger.Warn("no admin account found, bootstrap admin created from auth.bootstrap_* settings",
		"username", username)
	return nil
}
