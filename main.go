package main

import "github.com/agentify-dev/agentify/cmd"

func main() {
	cmd.Execute()
}
