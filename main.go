package main

import (
	"log"

	"github.com/anoixa/photo-manager/cmd"
	"github.com/anoixa/photo-manager/config"
)

func main() {
	log.Printf("photo manager %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
