package main

import "github.com/kozaktomas/face-portal/cmd"

func main() {
	cmd.Execute()
}
