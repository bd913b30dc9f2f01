package main

import "github.com/rivaiamin/ddl-compare/cmd"

func main() {
	cmd.Execute()
}
