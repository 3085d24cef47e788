// Command sessionctl drives a goSession controller from the terminal: sign in,
// inspect and refresh the stored session, sign out, and watch lifecycle events.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
