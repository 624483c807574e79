package kv

import (
	"github.com/ValentinKolb/kvapp/cmd/util"
	"github.com/ValentinKolb/kvapp/rpc/client"
	"github.com/ValentinKolb/kvapp/rpc/transport/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	kvClient *client.Client

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value operations against a kvapp server",
		PersistentPreRunE:  setupKVClient,
		PersistentPostRunE: closeKVClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitEnv)

	// Add client flags to the KV command
	util.SetupClientFlags(KeyValueCommands)

	KeyValueCommands.PersistentFlags().String("db", "db", util.WrapString("Name of the database to operate on"))

	// Add subcommands
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(putCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(infoCmd)
	KeyValueCommands.AddCommand(healthCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient initializes the HTTP client
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	kvClient, err = client.NewClient(*util.GetClientConfig(), http.NewHttpClientTransport())
	return err
}

func closeKVClient(_ *cobra.Command, _ []string) error {
	if kvClient == nil {
		return nil
	}
	return kvClient.Close()
}

// database returns the database selected with --db
func database() string {
	return viper.GetString("db")
}
