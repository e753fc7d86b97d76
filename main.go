package main

import "rescale/cmd"

func main() {
	cmd.Execute()
}
