package main

import "github.com/tyrchen/codebank-sub000/internal/cli"

func main() {
	cli.Execute()
}
