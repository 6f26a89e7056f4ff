package main

import "github.com/naka-gawa/star-trend/cmd"

func main() {
	cmd.Execute()
}
