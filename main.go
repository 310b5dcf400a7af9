package main

import "github.com/RamXX/tclone/cmd"

func main() {
	cmd.Execute()
}
