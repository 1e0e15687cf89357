// Command ridectl is a local companion CLI: it links provider accounts, lists
// activities, exports streams and summarises FIT files.
package main

import (
	"fmt"
	"os"

	"github.com/oddwes/ridesofjulian/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}
