// ./main.go
package main

import (
	"github.com/xkilldash9x/outbreak-cli/cmd"
)

// main is the entry point for the outbreak CLI.
func main() {
	cmd.Execute()
}
