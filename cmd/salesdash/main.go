package main

import "sales-dashboard/internal/cli"

func main() {
	cli.Execute()
}
