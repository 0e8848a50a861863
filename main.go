package main

import "clipdeck/internal/cli"

func main() {
	cli.Execute()
}
