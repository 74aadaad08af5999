// Command tournament-sync crawls badminton tournament listings and loads
// them into Postgres. See internal/cli for the command tree.
package main

import "github.com/badmintongame/tournament-sync/internal/cli"

func main() {
	cli.Execute()
}
