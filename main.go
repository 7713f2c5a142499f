package main

import "auction-escrow/cmd"

func main() {
	cmd.Execute()
}
