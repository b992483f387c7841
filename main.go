package main

import "github.com/tsiemens/cgt/cmd"

func main() {
	cmd.Execute()
}
