package main

import "github.com/peachcloud/peach-config/cmd/peach-config/cmd"

func main() {
	cmd.Execute()
}
