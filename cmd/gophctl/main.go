package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophgram/internal/ctl"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if err := ctl.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
