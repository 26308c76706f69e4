// Command foodsaver runs the FoodSaver inventory simulation and forecast engine.
package main

import (
	"fmt"
	"os"

	"github.com/YuPatty/foodsaver/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
