package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"scanbook/scan-csv/cmd/render"
	"scanbook/scan-csv/cmd/root"
	"scanbook/scan-csv/cmd/scan"
)

func init() {
	// Load environment variables silently before any logging is set
	// up; GEMINI_API_KEY typically lives in a .env file.
	loadEnvSilently()

	root.Init()
	root.Cmd.AddCommand(scan.Cmd)
	root.Cmd.AddCommand(render.Cmd)
}

func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
