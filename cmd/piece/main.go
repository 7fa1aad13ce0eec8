// Command piece mounts piece manifests from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/piece/cmd/piece/cmd"
	"github.com/go-drift/piece/pkg/errors"
)

func main() {
	defer errors.RecoverWithCallback("cmd.piece", func(any) { os.Exit(2) })

	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
