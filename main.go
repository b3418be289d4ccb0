// nberscan discovers and extracts NBER working papers by topic.
package main

import "github.com/econlabs/nber-paper-crawler/cmd"

func main() {
	cmd.Execute()
}
