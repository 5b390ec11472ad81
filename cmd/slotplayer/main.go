package main

import "github.com/tessro/slotplayer/internal/cli"

func main() {
	cli.Execute()
}
