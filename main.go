package main

import "github.com/ValentinKolb/minidb/cmd"

func main() {
	cmd.Execute()
}
