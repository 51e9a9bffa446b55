// Command floodfile is the terminal front-end for the ARP-tunneled
// peer-to-peer file sharing session: thin glue over pkg/session that
// contains no protocol logic of its own.
package main

import (
	"fmt"
	"os"

	"github.com/jrdwe/floodfile/cmd/floodfile/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
