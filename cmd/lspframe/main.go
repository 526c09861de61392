// Command lspframe inspects and validates Content-Length-framed LSP
// messages. The framing engine itself (pkg/lspengine) is a library with
// no I/O of its own; this binary is a thin CLI wrapped around it.
package main

import "github.com/lspframe/lspframe/cmd/lspframe/cmd"

func main() {
	cmd.Execute()
}
