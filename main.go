package main

import "snowlift/cmd"

func main() {
	cmd.Execute()
}
