package main

import "github.com/adhish9899/stat-arb/cmd"

func main() {
	cmd.Execute()
}
