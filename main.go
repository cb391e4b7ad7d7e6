package main

import "github.com/AtirathTechnologies/warehouse-hub/cmd"

func main() {
	cmd.Execute()
}
