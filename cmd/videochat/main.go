package main

import (
	"videochat/cmd/videochat/cmd"
)

func main() {
	cmd.Execute()
}
