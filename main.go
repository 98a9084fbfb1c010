// Socialnet - in-memory social network analysis.
//
// Socialnet keeps a bounded graph of users and friendships and answers
// friend-distance, common-friend, influence and community queries from an
// interactive menu, a batch report or an MCP server.
package main

import (
	"fmt"
	"os"

	"github.com/Benny93/socialnet-go/cmd"
)

func main() {
	cli := cmd.NewCLI()

	if err := cli.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
