package main

import "github.com/verus-tools/vstrip/cmd"

func main() {
	cmd.Execute()
}
