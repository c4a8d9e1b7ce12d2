package main

import "github.com/granth1406/HawkEye/cmd"

func main() {
	cmd.Execute()
}
