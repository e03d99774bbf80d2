package main

import "deskctl/cmd"

func main() {
	cmd.Execute()
}
