package enginesniff

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/enginesniff/enginesniff/internal/config"
	"github.com/enginesniff/enginesniff/internal/server"
)

var (
	flagAddr         string
	flagMaxBodyBytes int64
	flagDebug        bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the identification API over HTTP",
		RunE:  runServe,
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default :3000)")
	cmd.Flags().Int64Var(&flagMaxBodyBytes, "max-body-bytes", 0, "reject request bodies larger than this (default 8MiB)")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "log every identification")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cwd, _ := os.Getwd()
	gcfg, lcfg, err := loadConfigs(cwd)
	if err != nil {
		return err
	}
	engines, err := resolveEngines(cwd, lcfg, gcfg)
	if err != nil {
		return err
	}
	var lsc, gsc config.ServerConfig
	if lcfg.Server != nil {
		lsc = *lcfg.Server
	}
	if gcfg.Server != nil {
		gsc = *gcfg.Server
	}
	addr := pickString(flagAddr, lsc.Addr, gsc.Addr)
	maxBody := flagMaxBodyBytes
	if maxBody <= 0 {
		switch {
		case lsc.MaxBodyBytes != nil && *lsc.MaxBodyBytes > 0:
			maxBody = *lsc.MaxBodyBytes
		case gsc.MaxBodyBytes != nil:
			maxBody = gsc.GetMaxBodyBytes()
		}
	}
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := server.New(server.Config{
		Addr:         addr,
		MaxBodyBytes: maxBody,
		Engines:      engines,
		Logger:       server.NewLogger(cmd.ErrOrStderr(), level),
	})
	return srv.Start(ctx)
}
