package main

import (
	"github.com/dnadrive/fraggen/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
