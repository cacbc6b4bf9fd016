package main

import "jewelrydam/cmd"

func main() {
	cmd.Execute()
}
