// Command moar matches, searches and rewrites text with memory occurrence
// automata.
//
// Usage:
//
//	moar check pair.json 'aa|aa' 'aaa|aa'
//	moar find --vars words.yaml access.log
//	moar replace pair.json --with '<$1>' < input.txt
//	moar catalog put pair pair.json && moar find @pair input.txt
//	moar gen pair.json --name Pair --package pairs --output pair.go
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/s4ke/moar/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	// glog's -v, -logtostderr and friends
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	err := cmd.Execute()
	glog.Flush()
	if err != nil {
		code := cli.GetExitCode(err)
		if code != cli.ExitNoMatch {
			fmt.Fprintf(os.Stderr, "moar: %v\n", err)
		}
		os.Exit(code)
	}
}
