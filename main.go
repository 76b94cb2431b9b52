package main

import "github.com/optics-dev/optics-runner/pkg/cli"

func main() {
	cli.Execute()
}
