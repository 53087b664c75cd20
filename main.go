package main

import "github.com/will-rowe/cdrnet/cmd"

func main() {
	cmd.Execute()
}
