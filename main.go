package main

import "github.com/deploymenttheory/go-minidump/cmd"

func main() {
	cmd.Execute()
}
