package main

import "github.com/lukman83/autovit-sync/cmd"

func main() {
	cmd.Execute()
}
