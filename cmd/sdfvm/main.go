// Command sdfvm renders and meshes signed distance field scenes.
package main

import (
	"os"

	"github.com/chazu/sdfvm/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
