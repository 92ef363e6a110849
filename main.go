package main

import "github.com/seo-optimizer/auditor/cmd"

func main() {
	cmd.Execute()
}
