package main

import "github.com/killallgit/pharmai/cmd"

func main() {
	cmd.Execute()
}
