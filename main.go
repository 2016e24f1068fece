package main

import "github.com/inovacc/vetlink/cmd"

func main() {
	cmd.Execute()
}
