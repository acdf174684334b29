// Command ratfit fits rational approximations to sampled data.
package main

import "github.com/YuminosukeSato/ratfit/internal/cli"

func main() {
	cli.Execute()
}
