// Command urfacli is a thin command-line front end over package urfa: call
// one RPC function, list a schema's functions, or dump its function table.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/netup/urfaclient/internal/schemaxml"
)

var (
	flagLogin      string
	flagPass       string
	flagServerPort string
	flagSSL        bool
	flagAPIXMLFile string
	flagTimeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "urfacli",
	Short: "Command-line client for the URFA RPC service",
}

func init() {
	// .env is optional; a missing file is not an error. Loaded before the
	// flag defaults below are computed, so URFA_* values it sets are
	// visible to envOr the same as ambient environment variables.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&flagLogin, "login", envOr("URFA_LOGIN", "init"), "account name")
	rootCmd.PersistentFlags().StringVar(&flagPass, "pass", envOr("URFA_PASS", "init"), "account secret")
	rootCmd.PersistentFlags().StringVar(&flagServerPort, "server-port", envOr("URFA_SERVER_PORT", "localhost:11758"), "host[:port] to connect to")
	rootCmd.PersistentFlags().BoolVar(&flagSSL, "ssl", envOr("URFA_SSL", "") == "true", "wrap the connection in TLS")
	rootCmd.PersistentFlags().StringVar(&flagAPIXMLFile, "api-xml-file", envOr("URFA_API_XML_FILE", schemaxml.DefaultAPIXMLFile), "schema file, or a directory of schema fragments (dump-schema only)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 5*time.Second, "connect/read timeout")

	rootCmd.AddCommand(callCmd, dumpSchemaCmd, functionsCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
