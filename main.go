package main

import "github.com/accounthub/apiserver/cmd"

func main() {
	cmd.Execute()
}
