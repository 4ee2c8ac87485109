package main

import "github.com/0w0mewo/lsctl/cmd"

func main() {
	cmd.Execute()
}
