// Command callwire runs the tool server and provides a small client CLI
// for listing, calling, and streaming remote functions.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
