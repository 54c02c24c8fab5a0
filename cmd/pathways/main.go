package main

import (
	"fmt"
	"os"

	"github.com/MrSnakeDoc/pathways/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ pathways: %v\n", err)
		os.Exit(1)
	}
}
