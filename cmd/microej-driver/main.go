package main

import "github.com/devicelab-dev/microej-driver/pkg/cli"

func main() {
	cli.Execute()
}
