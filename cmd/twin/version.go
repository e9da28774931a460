package main

import (
	"fmt"

	// Packages
	version "github.com/dilettacal/digital-twin/pkg/version"
)

type VersionCommand struct{}

func (*VersionCommand) Run(g *Globals) error {
	fmt.Println(string(version.JSON(g.execName)))
	return nil
}
