// Command lendercheck builds the generic lender fixtures on a simulated Fantom
// fork and checks lender plugin reward rates, locally or against a node.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
