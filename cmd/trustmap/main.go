// ==============================================================================
// TRUSTMAP CLI - cmd/trustmap/main.go
// ==============================================================================
package main

import (
	"fmt"
	"os"

	"trustmap/pkg/config"
)

func main() {
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
