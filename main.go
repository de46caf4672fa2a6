package main

import (
	"fmt"
	"os"

	"fjacquet/bank-ingest/cmd/history"
	"fjacquet/bank-ingest/cmd/ingest"
	"fjacquet/bank-ingest/cmd/initdb"
	"fjacquet/bank-ingest/cmd/root"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(initdb.Cmd)
	root.Cmd.AddCommand(history.Cmd)
}

func main() {
	err := root.Cmd.Execute()
	root.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
