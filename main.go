package main

import "github.com/theirongolddev/statusline-pro/cmd"

func main() {
	cmd.Execute()
}
