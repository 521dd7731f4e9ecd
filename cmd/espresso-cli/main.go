package main

import "github.com/nfrund/espresso/cmd/espresso-cli/cmd"

func main() {
	cmd.Execute()
}
