package main

import "github.com/reqlint/reqlint/cmd"

func main() {
	cmd.Execute()
}
