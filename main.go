package main

import "buyorder-alerts/internal/cli"

func main() {
	cli.Execute()
}
