package main

import "lair-scanner/cmd"

func main() {
	cmd.Execute()
}
