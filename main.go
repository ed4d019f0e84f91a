package main

import (
	"github.com/axellelanca/linkshelf/cmd"
	_ "github.com/axellelanca/linkshelf/cmd/cli"
	_ "github.com/axellelanca/linkshelf/cmd/server"
)

func main() {
	cmd.Execute()
}
