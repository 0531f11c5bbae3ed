package main

import "noetic-jammy/internal/cli"

func main() {
	cli.Execute()
}
