package main

import "github.com/scanguard/scanguard/cmd/scanguard"

func main() { scanguard.Execute() }
