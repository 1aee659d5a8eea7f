// Package main is the entry point for the lolmetrics CLI, which ingests
// friend-group match records and computes the metric artifact catalogue.
package main

import "lolmetrics/cmd"

func main() {
	cmd.Execute()
}
