// Command orgctl is a command-line toolkit for plain-text org outline
// files: parsing, surgical mutation, a persistent full-text index, and a
// roam-compatible knowledge graph.
package main

import (
	"fmt"
	"os"

	"github.com/jra3/orgctl/cmd/orgctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
