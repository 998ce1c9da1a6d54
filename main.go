package main

import "github.com/vectome/vectome/cmd"

func main() {
	cmd.Execute()
}
