// file: main.go
// version: 1.0.0
// guid: 0a8f4d2c-6e91-4b37-ba5d-9c2f7e01a684

package main

import (
	"fmt"
	"os"

	"github.com/RafaelNCST/grimorium-sub002/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
