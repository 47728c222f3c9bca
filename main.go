package main

import "github.com/openstudydata/ddiwalk/cmd"

func main() {
	cmd.Execute()
}
