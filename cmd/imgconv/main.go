// entry point to app :)
package main

import (
	"fmt"
	"os"

	"github.com/Ace0731/Image-Converter/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
