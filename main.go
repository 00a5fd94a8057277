package main

import "github.com/agentic-research/waypath/cmd"

func main() {
	cmd.Execute()
}
