package main

import "github.com/dbsmedya/refdump/cmd/refdump/cmd"

func main() {
	cmd.Execute()
}
