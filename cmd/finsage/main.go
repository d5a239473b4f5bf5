package main

import (
	"github.com/finsage/finsage/internal/cli"
)

func main() {
	cli.Run()
}
