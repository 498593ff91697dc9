package main

import "github.com/ostaubli/team-eval/cmd"

func main() {
	cmd.Execute()
}
