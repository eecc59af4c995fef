package main

import "go.pilab.hu/coursehub/cmd/coursectl/cmd"

func main() {
	cmd.Execute()
}
