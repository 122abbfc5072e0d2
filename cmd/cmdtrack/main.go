package main

import (
	"github.com/nickagee13/commandtrack/internal/cli"
)

func main() {
	cli.Execute()
}
