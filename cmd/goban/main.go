package main

import "goban/internal/cli"

func main() {
	cli.Execute()
}
