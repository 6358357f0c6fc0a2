package main

import "github.com/descant/descant/cmd/descant/cmd"

func main() {
	cmd.Execute()
}
