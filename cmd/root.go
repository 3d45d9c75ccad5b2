package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/minidb/cmd/kv"
	"github.com/ValentinKolb/minidb/cmd/serve"
	"github.com/ValentinKolb/minidb/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd starts the server; client tooling lives in the subcommands
	RootCmd = &cobra.Command{
		Use:   "minidb <port> <path>",
		Short: "single process in-memory key-value server",
		Long: fmt.Sprintf(`miniDB (v%s)

A single process key-value server speaking a line based text protocol over TCP.
The store is loaded from <path> on startup and written back to it on SIGINT/SIGTERM.

Protocol (one command per line, one response per line):
  POST <key> <value>  -> 0
  GET <key>           -> 0 <value> | 1
  DELETE <key>        -> 0 | 1
  anything else       -> 2

All flags can also be set via environment variables with the prefix MINIDB_
(e.g. MINIDB_LOG_LEVEL=debug).`, Version),
		Args:    cobra.MinimumNArgs(2),
		PreRunE: serve.ProcessConfig,
		RunE:    serve.Run,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of miniDB",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "miniDB v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	serve.SetupFlags(RootCmd)
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
