// usteerctl is the CLI client for the usteerd daemon.
package main

import "github.com/dantte-lp/usteerd/cmd/usteerctl/commands"

func main() {
	commands.Execute()
}
