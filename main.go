package main

import "github.com/sadopc/billr/cmd"

func main() {
	cmd.Execute()
}
