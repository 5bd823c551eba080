package main

import "github.com/ingo-eichhorst/modguard/cmd"

func main() {
	cmd.Execute()
}
