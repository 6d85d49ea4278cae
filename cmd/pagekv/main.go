// Command pagekv inspects and operates pagekv directories.
package main

import "github.com/hupe1980/pagekv/cmd/pagekv/cli"

func main() {
	cli.Execute()
}
