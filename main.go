package main

import "github.com/ValentinKolb/kvapp/cmd"

func main() {
	cmd.Execute()
}
