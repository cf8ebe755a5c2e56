// quizctl drives the quiz SDK against a running API server: take the quiz
// end to end, browse match history, and inspect products from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

var (
	flagBaseURL string
	flagToken   string
	flagAnonID  string
	flagVerbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "quizctl",
		Short:         "Drive the skincare quiz API from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "http://localhost:8080", "API base URL")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "bearer token (authenticated identity)")
	rootCmd.PersistentFlags().StringVar(&flagAnonID, "anon-id", "", "anonymous session id (generated when empty)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newProductCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*logger.Logger, error) {
	if flagVerbose {
		return logger.New("development")
	}
	return logger.NewNop(), nil
}
