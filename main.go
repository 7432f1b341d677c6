package main

import "github.com/mattsolle/ccgauge/cmd"

func main() {
	cmd.Execute()
}
