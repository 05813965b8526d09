package main

import "simpleink/cmd"

func main() {
	cmd.Execute()
}
