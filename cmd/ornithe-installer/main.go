package main

import "ornithe-installer/internal/cli"

func main() {
	cli.Execute()
}
