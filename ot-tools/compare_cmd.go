package main

import (
	"fmt"

	"github.com/npillmayer/otface/internal/gotextcmp"
	"github.com/thatisuday/commando"
)

func runCompareCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	tf := mustLoadTypeface(args, flags)
	defer tf.Close()
	spec, err := flags["range"].GetString()
	if err != nil {
		fatalf("invalid --range flag: %v", err)
	}
	first, last, err := parseRange(spec)
	if err != nil {
		fatalf("%v", err)
	}
	report, err := gotextcmp.Compare(tf, gotextcmp.Range(first, last))
	if err != nil {
		fatalf("%v", err)
	}
	for _, m := range report.Mismatches {
		fmt.Println(m)
	}
	fmt.Printf("compared %d code-points, %d mismatches\n", report.Checked, len(report.Mismatches))
	if !report.OK() {
		fatalf("typeface differs from go-text")
	}
}
