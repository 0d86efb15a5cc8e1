package main

import "github.com/summitops/event-pay-gateway/cmd"

func main() {
	cmd.Execute()
}
