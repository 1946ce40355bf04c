package main

import "github.com/dispatchd/dispatchd/internal/cli"

func main() {
	cli.Execute()
}
