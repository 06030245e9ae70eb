package main

import (
	"os"

	"github.com/loginflow-systems/login-etl/internal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
