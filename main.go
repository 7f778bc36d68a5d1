package main

import "detectdemo/cmd"

func main() {
	cmd.Execute()
}
