// ABOUTME: Entry point for the board CLI
// ABOUTME: Community board client, feed browser and edge server in one binary

package main

import (
	"fmt"
	"os"

	"github.com/cozyrim/3-bella-han-comunity-frontend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
