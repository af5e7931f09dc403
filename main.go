package main

import (
	"log"

	"github.com/thiagokokada/gitrepo-go/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("gitrepo-go: %v", err)
	}
}
