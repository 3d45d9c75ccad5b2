package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/minidb/lib/store"
	"github.com/ValentinKolb/minidb/lib/store/cstore"
	"github.com/ValentinKolb/minidb/lib/store/lstore"
	"github.com/ValentinKolb/minidb/rpc/common"
	"github.com/ValentinKolb/minidb/rpc/transport"
	"github.com/ValentinKolb/minidb/rpc/transport/epoll"
	"github.com/ValentinKolb/minidb/rpc/transport/evio"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables (e.g. MINIDB_LOG_LEVEL)
	EnvPrefix = "minidb"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and makes viper read matching environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// --------------------------------------------------------------------------
// Server helper
// --------------------------------------------------------------------------

// GetTransport creates the server transport with the given name
func GetTransport(name string) (transport.IServerTransport, error) {
	switch name {
	case "epoll":
		return epoll.NewEpollServerTransport(), nil
	case "evio":
		return evio.NewEvioServerTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s (expected epoll or evio)", name)
	}
}

// GetStore creates an empty store of the given implementation
func GetStore(name string) (store.IStore, error) {
	switch store.Implementation(name) {
	case store.ImplMap:
		return lstore.NewLocalStore(), nil
	case store.ImplXsync:
		return cstore.NewConcurrentStore(), nil
	default:
		return nil, fmt.Errorf("invalid store %s (expected %s or %s)", name, store.ImplMap, store.ImplXsync)
	}
}

// --------------------------------------------------------------------------
// Client helper
// --------------------------------------------------------------------------

// SetupClientFlags adds the connection flags to a client command
func SetupClientFlags(cmd *cobra.Command) {
	key := "endpoint"
	cmd.PersistentFlags().String(key, "127.0.0.1:8080", WrapString("The address of the miniDB server (host:port)"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of every request (0 = no timeout)"))
}

// GetClientConfig reads the client configuration from viper
func GetClientConfig() common.ClientConfig {
	return common.ClientConfig{
		Endpoint:      viper.GetString("endpoint"),
		TimeoutSecond: viper.GetInt("timeout"),
	}
}
