// Command ptzsim runs a stand-in preset server for ptzctrl. It speaks the
// same websocket protocol, keeps button labels in SQLite and lets tally
// lights be driven over HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
