package main

import "github.com/Nina181/kcat-flux-relationship/internal/cli"

func main() {
	cli.Execute()
}
