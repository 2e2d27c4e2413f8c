package main

import "github.com/iliyamo/dantour/internal/cmd"

func main() {
	cmd.Execute()
}
