package main

import "github.com/kkahadze/mkhedruli-megruli/internal/cli"

func main() {
	cli.Execute()
}
