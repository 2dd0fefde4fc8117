package main

import (
	"fmt"
	"os"

	"github.com/wpstrap/wpstrap/internal/cli"
	"github.com/wpstrap/wpstrap/pkg/style"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, style.Error.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
