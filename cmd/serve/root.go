package serve

import (
	"context"
	"errors"
	"fmt"
	cmdUtil "github.com/ValentinKolb/kvapp/cmd/util"
	"github.com/ValentinKolb/kvapp/lib/registry"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/ValentinKolb/kvapp/rpc/server"
	"github.com/ValentinKolb/kvapp/rpc/transport/http"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
)

var Logger = logger.GetLogger("kvapp")

var (
	// Version is reported by the identity endpoint, set by the root command
	Version = "dev"

	serveCmdConfig *common.ServerConfig
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the kvapp server",
		Long:    `Start the kvapp server with the specified configuration. The configuration can be set via command line flags, environment variables or a JSON config file. The format of the environment variables is KVAPP_<flag> (e.g. KVAPP_BIND_PORT=9000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitEnv)

	// add flags
	key := "config"
	ServeCmd.PersistentFlags().String(key, common.DefaultConfigFile, cmdUtil.WrapString("JSON config file listing the databases to serve, either {\"databases\": [...]} or a bare array of {\"name\", \"path\", \"engine\"} entries. If the default file does not exist, a single database named 'db' is served"))

	key = "db"
	ServeCmd.PersistentFlags().String(key, common.DefaultDatabaseDir, cmdUtil.WrapString("Directory of the database 'db' served when there is no config file"))

	key = "engine"
	ServeCmd.PersistentFlags().String(key, string(common.DefaultEngine), cmdUtil.WrapString("Storage engine for databases that do not name one (badger, bolt, memory)"))

	key = "bind-addr"
	ServeCmd.PersistentFlags().String(key, common.DefaultBindAddr, cmdUtil.WrapString("Server socket bind address"))

	key = "bind-port"
	ServeCmd.PersistentFlags().Int(key, common.DefaultBindPort, cmdUtil.WrapString("Server socket bind port"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Overrides bind-addr and bind-port. Either host:port or the path of a unix socket (e.g. /tmp/kvapp.sock)"))

	key = "max-value-bytes"
	ServeCmd.PersistentFlags().Int64(key, common.DefaultMaxValueBytes, cmdUtil.WrapString("Largest accepted PUT body in bytes, larger requests are answered with 413"))

	key = "read-timeout"
	ServeCmd.PersistentFlags().Duration(key, common.DefaultReadTimeout, cmdUtil.WrapString("Maximum duration for reading a whole request"))

	key = "write-timeout"
	ServeCmd.PersistentFlags().Duration(key, common.DefaultWriteTimeout, cmdUtil.WrapString("Maximum duration before timing out writes of the response"))

	key = "idle-timeout"
	ServeCmd.PersistentFlags().Duration(key, common.DefaultIdleTimeout, cmdUtil.WrapString("Maximum time to wait for the next request on a keep-alive connection"))

	key = "shutdown-timeout"
	ServeCmd.PersistentFlags().Duration(key, common.DefaultShutdownTimeout, cmdUtil.WrapString("How long to wait for in-flight requests on shutdown"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, common.DefaultLogLevel, cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags, environment variables
// and config file and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	config, err := cmdUtil.LoadServerConfig(viper.GetViper())
	if err != nil {
		return err
	}
	serveCmdConfig = config

	return common.InitLoggers(config.LogLevel)
}

// run opens all databases and serves them until SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) (err error) {
	Logger.Infof("Starting kvapp v%s", Version)
	Logger.Infof(serveCmdConfig.String())

	reg, err := registry.New(serveCmdConfig.Databases)
	if err != nil {
		return err
	}

	// databases are flushed and closed after the listener has drained
	defer func() {
		if closeErr := reg.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close databases: %w", closeErr))
		}
	}()

	dispatcher := server.NewDispatcher(reg, server.Options{
		Version:       Version,
		MaxValueBytes: serveCmdConfig.MaxValueBytes,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return http.NewHttpServerTransport(*serveCmdConfig, dispatcher).Start(ctx)
}
