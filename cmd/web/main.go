package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/resp-atlas/pkg/runtime/app"
	"github.com/de-tools/resp-atlas/pkg/runtime/terminal/commands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	env := &commands.Env{Setup: app.Load}
	rootCmd := commands.NewServeCmd(env)
	rootCmd.Use = "web"
	rootCmd.Short = "Start the web server for Resp Atlas"
	rootCmd.SilenceUsage = true
	rootCmd.Flags().StringVarP(&env.ConfigPath, "config", "c", os.Getenv("RESP_ATLAS_CONFIG"),
		"Path to the resp-atlas config file (default is $RESP_ATLAS_CONFIG)")

	err := rootCmd.ExecuteContext(logger.WithContext(context.Background()))
	if closeErr := env.Close(); closeErr != nil {
		logger.Warn().Err(closeErr).Msg("failed to close local store")
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
