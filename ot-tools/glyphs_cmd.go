package main

import (
	"fmt"

	"github.com/npillmayer/otface"
	"github.com/thatisuday/commando"
)

func runGlyphsCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	tf := mustLoadTypeface(args, flags)
	defer tf.Close()
	input, err := parseInput(args["text"], flags["codepoints"])
	if err != nil {
		fatalf("%v", err)
	}
	run := layoutRun(tf, input, !mustFlagBool(flags["nokern"], "nokern"))
	fmt.Println(formatRun(run))
	verbose, _ := flags["verbose"].GetBool()
	if verbose {
		for i, r := range []rune(input) {
			fmt.Printf("%#U glyph=%d x=%g advance=%g kern=%g\n", r, run[i].GID, run[i].X, run[i].Advance, run[i].Kern)
		}
	}
	fmt.Printf("width: %g units, %.3f em\n", runWidth(run), runWidth(run)/float32(tf.UnitsPerEm()))
}

func runKernCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	tf := mustLoadTypeface(args, flags)
	defer tf.Close()
	input, err := parseInput(args["text"], flags["codepoints"])
	if err != nil {
		fatalf("%v", err)
	}
	if !tf.HasKerning() {
		fmt.Println("font has no kerning")
		return
	}
	for _, p := range kernPairs(tf, input) {
		if p.found {
			fmt.Printf("%q%q  %d,%d  %d\n", p.left, p.right, p.l, p.r, p.value)
		} else {
			fmt.Printf("%q%q  %d,%d  -\n", p.left, p.right, p.l, p.r)
		}
	}
}

type kernPair struct {
	left, right rune
	l, r        uint32 // glyph IDs
	value       int16
	found       bool
}

// kernPairs looks up the kerning of every pair of adjacent runes of text.
func kernPairs(tf *otface.Typeface, text string) []kernPair {
	runes := []rune(text)
	gids := tf.GlyphIDsForString(text)
	var pairs []kernPair
	for i := 0; i+1 < len(runes); i++ {
		p := kernPair{left: runes[i], right: runes[i+1], l: gids[i], r: gids[i+1]}
		p.value, p.found = tf.KerningPair(p.l, p.r)
		pairs = append(pairs, p)
	}
	return pairs
}
