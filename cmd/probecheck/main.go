package main

import "github.com/hamed0406/probecheck/internal/cli"

func main() {
	cli.Execute()
}
