// Command airac converts between calendar dates and AIRAC cycle identifiers.
//
// Usage:
//
//	airac date 2020-01-02
//	airac ident 2001
//	airac year 2024 --weeks 1 --json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
