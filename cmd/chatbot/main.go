// cmd/chatbot/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "chatbot",
	Short:        "Customer support chatbot for the clothing store",
	Long:         "Answers customer messages about orders, stock and products over HTTP, as Zeebe job workers, or from the command line.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: configs/config.yaml plus config.<APP_ENVIRONMENT>.yaml)")
	rootCmd.AddCommand(serveCmd, workerCmd, askCmd, reindexCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
