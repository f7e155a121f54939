package main

import "tgscout/cmd/tgscout/cmd"

func main() {
	cmd.Execute()
}
