package main

import "github.com/electr1fy0/bluenotes/cmd"

func main() {
	cmd.Execute()
}
