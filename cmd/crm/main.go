package main

import (
	"fmt"
	"os"

	"github.com/fekuna/omnipos-crm-service/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "crm:", err)
		os.Exit(1)
	}
}
