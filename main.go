package main

import "github.com/hepsoft/rootsense/cmd"

func main() {
	cmd.Execute()
}
