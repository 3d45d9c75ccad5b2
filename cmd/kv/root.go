package kv

import (
	"github.com/ValentinKolb/minidb/cmd/util"
	"github.com/ValentinKolb/minidb/rpc/client"
	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	kvClient *client.Client

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value operations against a running server",
		PersistentPreRunE:  setupKVClient,
		PersistentPostRunE: closeKVClient,
	}
)

func init() {
	// Add connection flags to the KV command
	util.SetupClientFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(postCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(rawCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient connects to the server
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	common.InitLoggers(common.ServerConfig{LogLevel: viper.GetString("log-level")})

	// perf opens its own connections
	if cmd == perfTestCmd {
		return nil
	}

	var err error
	kvClient, err = client.Dial(util.GetClientConfig())
	return err
}

func closeKVClient(_ *cobra.Command, _ []string) error {
	if kvClient == nil {
		return nil
	}
	return kvClient.Close()
}
