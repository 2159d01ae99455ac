package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/otface"
	"github.com/npillmayer/otface/internal/fontload"
	"github.com/thatisuday/commando"
)

func main() {
	commando.
		SetExecutableName("ot-tools").
		SetVersion("v0.0.1").
		SetDescription("CLI for OpenType typeface diagnostics.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("font").
		SetDescription("Print identity, metrics and table information for an OpenType font.").
		SetShortDescription("font diagnostics").
		AddArgument("font", "OpenType font file path", "").
		AddArgument("tables...", "optional list of table tags (e.g. cmap,OS/2,head)", "").
		AddFlag("index,i", "font index within a collection", commando.Int, 0).
		AddFlag("skip,s", "tables to skip (comma separated: name,hmtx,OS/2)", commando.String, "-").
		AddFlag("errors,e", "print parse errors and warnings", commando.Bool, nil).
		SetAction(runFontCommand)

	commando.
		Register("glyphs").
		SetDescription("Resolve text to glyphs and print advances and kerning.").
		SetShortDescription("glyph run").
		AddArgument("font", "OpenType font file path", "").
		AddArgument("text...", "text to resolve", "").
		AddFlag("index,i", "font index within a collection", commando.Int, 0).
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0041,U+0056)", commando.String, "-").
		AddFlag("nokern,K", "do not apply kerning", commando.Bool, nil).
		SetAction(runGlyphsCommand)

	commando.
		Register("kern").
		SetDescription("Print the kerning of adjacent character pairs of a text.").
		SetShortDescription("pair kerning").
		AddArgument("font", "OpenType font file path", "").
		AddArgument("text...", "text with pairs to look up", "").
		AddFlag("index,i", "font index within a collection", commando.Int, 0).
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0041,U+0056)", commando.String, "-").
		SetAction(runKernCommand)

	commando.
		Register("view").
		SetDescription("Render a glyph run to a PNG image.").
		SetShortDescription("render to image").
		AddArgument("font", "OpenType font file path", "").
		AddArgument("text...", "text to render", "").
		AddFlag("index,i", "font index within a collection", commando.Int, 0).
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0041,U+0056)", commando.String, "-").
		AddFlag("nokern,K", "do not apply kerning", commando.Bool, nil).
		AddFlag("output,o", "output PNG file", commando.String, "ot-tools-view.png").
		AddFlag("show-bboxes,B", "draw red bounding-box outlines per rendered glyph", commando.Bool, nil).
		AddFlag("ppem,p", "render scale in pixels-per-em", commando.Int, 96).
		AddFlag("width,W", "image width in pixels", commando.Int, 640).
		AddFlag("height,H", "image height in pixels", commando.Int, 240).
		SetAction(runViewCommand)

	commando.
		Register("compare").
		SetDescription("Compare glyph resolution and advances with go-text/typesetting.").
		SetShortDescription("cross-check font").
		AddArgument("font", "OpenType font file path", "").
		AddFlag("index,i", "font index within a collection", commando.Int, 0).
		AddFlag("range,r", "code-point range to compare (e.g. U+0000-U+024F)", commando.String, "U+0000-U+024F").
		SetAction(runCompareCommand)

	commando.Parse(nil)
}

// --- Helpers ----------------------------------------------------------

func mustLoadTypeface(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) *otface.Typeface {
	fontPath := strings.TrimSpace(args["font"].Value)
	if fontPath == "" {
		fatalf("font path is required")
	}
	path, err := fontload.Locate(fontPath)
	if err != nil {
		fatalf("%v", err)
	}
	opts := otface.Options{Index: uint32(mustFlagInt(flags["index"], "index"))}
	if f, ok := flags["skip"]; ok {
		if opts.SkipTables, err = parseSkipTables(f); err != nil {
			fatalf("%v", err)
		}
	}
	tf, err := fontload.LoadTypeface(path, opts)
	if err != nil {
		fatalf("%v", err)
	}
	return tf
}

func parseSkipTables(flag commando.FlagValue) (otface.SkipTables, error) {
	spec, err := flag.GetString()
	if err != nil {
		return 0, fmt.Errorf("invalid --skip flag: %w", err)
	}
	var skip otface.SkipTables
	if spec == "-" {
		return skip, nil
	}
	for _, t := range splitCSVSpace(spec) {
		switch strings.ToLower(t) {
		case "name":
			skip |= otface.SkipName
		case "hmtx":
			skip |= otface.SkipHmtx
		case "os/2", "os2":
			skip |= otface.SkipOS2
		default:
			return 0, fmt.Errorf("table %q cannot be skipped", t)
		}
	}
	return skip, nil
}

func parseInput(textArg commando.ArgValue, cpFlag commando.FlagValue) (string, error) {
	spec, err := cpFlag.GetString()
	if err != nil {
		return "", fmt.Errorf("invalid --codepoints flag: %w", err)
	}
	if spec = strings.TrimSpace(spec); spec != "" && spec != "-" {
		runes, err := parseCodepoints(spec)
		if err != nil {
			return "", err
		}
		return string(runes), nil
	}
	// commando joins variadic argument parts with commas
	return strings.Join(strings.Split(textArg.Value, ","), " "), nil
}

func parseCodepoints(spec string) ([]rune, error) {
	tokens := splitCSVSpace(spec)
	runes := make([]rune, 0, len(tokens))
	for _, token := range tokens {
		r, err := parseCodepointToken(token)
		if err != nil {
			return nil, err
		}
		runes = append(runes, r)
	}
	return runes, nil
}

func parseCodepointToken(token string) (rune, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	t = strings.TrimPrefix(t, "U+")
	t = strings.TrimPrefix(t, "0X")
	if t == "" {
		return 0, fmt.Errorf("empty code-point token %q", token)
	}
	n, err := strconv.ParseUint(t, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid code-point %q: %w", token, err)
	}
	if n > 0x10ffff {
		return 0, fmt.Errorf("code-point out of range: %q", token)
	}
	return rune(n), nil
}

// parseRange parses a code-point range of the form U+0000-U+024F.
func parseRange(spec string) (rune, rune, error) {
	first, last, ok := strings.Cut(spec, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid code-point range %q", spec)
	}
	from, err := parseCodepointToken(first)
	if err != nil {
		return 0, 0, err
	}
	to, err := parseCodepointToken(last)
	if err != nil {
		return 0, 0, err
	}
	if to < from {
		return 0, 0, fmt.Errorf("empty code-point range %q", spec)
	}
	return from, to, nil
}

func splitCSVSpace(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "ot-tools: "+format+"\n", args...)
	os.Exit(1)
}
