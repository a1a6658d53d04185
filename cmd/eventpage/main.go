package main

import (
	"os"

	"github.com/Its-donkey/eventpage/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
