package main

import (
	"fmt"
	"os"

	"cmdbank/cli"
)

func main() {
	code, err := cli.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}
