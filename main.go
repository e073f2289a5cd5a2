package main

import "github.com/chadmayfield/weatherreportd/cmd"

func main() {
	cmd.Execute()
}
