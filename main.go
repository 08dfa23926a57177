package main

import "modelvault/cmd"

func main() {
	cmd.Execute()
}
