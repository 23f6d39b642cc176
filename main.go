package main

import (
	"github.com/VIISON/scs-commander/cmd"
)

func main() {
	cmd.Execute()
}
