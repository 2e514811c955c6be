package main

import "github.com/stockii/event-skill-for-openclaw/internal/cli"

func main() {
	cli.Execute()
}
