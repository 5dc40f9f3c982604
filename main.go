package main

import (
	"log"

	"github.com/thiagokokada/jj-inspect/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("jj-inspect: %v", err)
	}
}
