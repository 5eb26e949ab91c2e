package main

import "bizlistings/cmd"

func main() {
	cmd.Execute()
}
