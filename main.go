package main

import "pinshare-backend/cmd"

func main() {
	cmd.Run()
}
