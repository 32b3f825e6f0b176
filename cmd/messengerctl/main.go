package main

import "messenger-be/cmd/messengerctl/cmd"

func main() {
	cmd.Execute()
}
