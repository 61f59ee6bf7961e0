package main

import "github.com/matthieukhl/doemart/internal/cmd"

func main() {
	cmd.Execute()
}
