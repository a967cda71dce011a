package main

import "github.com/dbsmedya/goreach/cmd/goreach/cmd"

func main() {
	cmd.Execute()
}
