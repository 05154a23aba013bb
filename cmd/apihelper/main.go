// Command apihelper authorizes against and calls the supported providers
// from the terminal. Authorized sessions are kept in the configured
// snapshot store so later calls reuse them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
