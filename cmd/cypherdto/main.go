// Command cypherdto renders the Cypher templates of descriptor files and
// checks connectivity to a Neo4j database.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
