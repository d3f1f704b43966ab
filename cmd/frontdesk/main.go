// Command frontdesk mirrors the operating-room backend and renders its
// operation panels.
package main

import "github.com/mesh-intelligence/frontdesk/internal/cli"

func main() {
	cli.Execute()
}
