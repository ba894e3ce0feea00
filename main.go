package main

import "github.com/DegaZZZ/hazetick/cmd"

func main() {
	cmd.Execute()
}
