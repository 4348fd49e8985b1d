package main

import "github.com/zephyrtronium/ratexpr/cmd/ratexpr/commands"

func main() {
	commands.Execute()
}
