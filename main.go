package main

import "github.com/crowdstream/crowdstream/cmd"

func main() {
	cmd.Execute()
}
