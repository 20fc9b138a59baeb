package main

import "github.com/jungtin/notion-to-audio/cmd"

func main() {
	cmd.Execute()
}
