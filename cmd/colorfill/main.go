package main

import "github.com/Fepozopo/colorfill/pkg/cli"

func main() {
	cli.RunCLI()
}
