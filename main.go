package main

import "carbon-track/cmd"

func main() {
	cmd.Execute()
}
