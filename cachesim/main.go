// Command cachesim replays a memory trace against a configurable cache and
// reports its hit rate.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
