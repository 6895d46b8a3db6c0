package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	glspserver "github.com/tliron/glsp/server"

	"github.com/CWBudde/go-qs-lsp/internal/lsp"
	"github.com/CWBudde/go-qs-lsp/internal/server"
)

var (
	verbosity int
	logFile   string
	tcpMode   bool
	tcpPort   int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "go-qs-lsp",
	Short:         "Language server for Q# compiler snapshots",
	Long:          "go-qs-lsp answers editor queries (completion, hover, references, rename, signature help) from the snapshots the Q# compiler writes.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server (stdio by default)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the server version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", lsp.ServerName, lsp.ServerVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeat for more)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (default: stderr)")

	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().BoolVar(&tcpMode, "tcp", false, "listen on TCP instead of stdio (for debugging)")
		cmd.Flags().IntVar(&tcpPort, "port", 8765, "TCP port to listen on (used with --tcp)")
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
}

// setupLogging configures the commonlog backend from the command-line flags.
// Stdout carries the protocol, so logs never go there.
func setupLogging() {
	if logFile != "" {
		commonlog.Configure(verbosity, &logFile)
	} else {
		commonlog.Configure(verbosity, nil)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := commonlog.GetLogger("qs-lsp")

	srv := server.New()
	lsp.SetServer(srv)

	handler := lsp.NewHandler()
	glspServer := glspserver.NewServer(&handler, lsp.ServerName, verbosity > 1)

	if tcpMode {
		address := fmt.Sprintf("127.0.0.1:%d", tcpPort)
		logger.Noticef("%s %s listening on %s", lsp.ServerName, lsp.ServerVersion, address)

		if err := glspServer.RunTCP(address); err != nil {
			return fmt.Errorf("tcp server: %w", err)
		}

		return nil
	}

	logger.Noticef("%s %s serving on stdio", lsp.ServerName, lsp.ServerVersion)

	if err := glspServer.RunStdio(); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}

	return nil
}
