package main

import (
	"github.com/omnipost/omnipost/cmd"
)

func main() {
	cmd.Execute()
}
