package main

import "minical/internal/cli"

func main() {
	cli.Execute()
}
