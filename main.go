package main

import "github.com/chloe1331/typeorm/cmd"

func main() {
	cmd.Execute()
}
