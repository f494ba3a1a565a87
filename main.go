package main

import (
	"github.com/zapier/headscan/cmd"
)

func main() {
	cmd.Execute()
}
