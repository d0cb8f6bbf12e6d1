package main

import (
	"fmt"
	"os"

	marcuscmder "github.com/papercomputeco/marcus/cmd/marcus"
)

func main() {
	cmd := marcuscmder.NewMarcusCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
