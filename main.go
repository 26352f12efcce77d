package main

import (
	cmd "github.com/tutorhub/tutorhub/cmd/tutorhub"
)

func main() {
	cmd.Execute()
}
