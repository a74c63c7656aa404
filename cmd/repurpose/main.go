package main

import "github.com/suteetoe/repurpose/cmd/repurpose/commands"

func main() {
	commands.Execute()
}
