package main

import "github.com/neo-mofox/webui/cmd/webui/cmd"

func main() {
	cmd.Execute()
}
