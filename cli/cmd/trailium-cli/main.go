package main

import "github.com/emrealmaoglu/trailium/cli/internal/cmd"

func main() {
	cmd.Execute()
}
