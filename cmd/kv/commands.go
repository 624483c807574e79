package kv

import (
	"encoding/json"
	"fmt"
	"github.com/spf13/cobra"
	"io"
	"os"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Sets the value for a key (use - as value to read it from stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := []byte(args[1])
			if args[1] == "-" {
				var err error
				if value, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("failed to read value from stdin: %w", err)
				}
			}
			if err := kvClient.Put(cmd.Context(), database(), key, value); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "put successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, found, err := kvClient.Get(cmd.Context(), database(), key)
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintf(cmd.ErrOrStderr(), "key %q not found\n", key)
				os.Exit(1)
			}
			raw, _ := cmd.Flags().GetBool("raw")
			if raw {
				_, err = cmd.OutOrStdout().Write(value)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key=%s, found=%v, value=%s\n", key, found, value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:     "delete [key]",
		Aliases: []string{"del"},
		Short:   "Deletes a key value pair",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			removed, err := kvClient.Delete(cmd.Context(), database(), key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key=%s, removed=%v\n", key, removed)
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints the identity of the server and its databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity, err := kvClient.Info(cmd.Context())
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(identity, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Checks whether the server is healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			healthy, err := kvClient.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "healthy=%v\n", healthy)
			if !healthy {
				os.Exit(1)
			}
			return nil
		},
	}
)

func init() {
	getCmd.Flags().Bool("raw", false, "Write only the raw value to stdout")
}
