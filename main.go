// Package main is the entry point for melody.
package main

import (
	"github.com/melody-cli/melody/cmd"
	"github.com/melody-cli/melody/config"
	"github.com/melody-cli/melody/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
