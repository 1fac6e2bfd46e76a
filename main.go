package main

import (
	"log"

	"github.com/ysy950803/supportchat/cmd/supportchat"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	supportchat.Execute()
}
