package cmd

import (
	"fmt"
	"github.com/ValentinKolb/kvapp/cmd/kv"
	"github.com/ValentinKolb/kvapp/cmd/serve"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.4.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "kvapp",
		Short: "multi-database HTTP key-value server",
		Long: fmt.Sprintf(`kvapp (v%s)

An HTTP front end serving one or more embedded key-value databases.
Values are opaque bytes addressed as /api/{db}/{key}.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kvapp",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kvapp v%s\n", Version)
		},
	}
)

func init() {
	serve.Version = Version

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
