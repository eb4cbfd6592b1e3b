package main

import "github.com/Layr-Labs/abi-tool/cmd"

func main() {
	cmd.Execute()
}
