// Package main implements the interactive client for browsing a chess game database.
package main

import (
	"os"

	"chessdb/cmd/chessdb/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
