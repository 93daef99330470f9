// trajmap is the command-line client for the TrajMap map service.
package main

import (
	"os"

	"github.com/turtacn/TrajMap/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

//Personal.AI order the ending
