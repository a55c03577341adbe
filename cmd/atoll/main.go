package main

import (
	"fmt"
	"os"

	"github.com/atollweb/atoll/pkg/ui/styles"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.GetStyle("Error").Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
