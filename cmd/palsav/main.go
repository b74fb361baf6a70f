// Copyright (c) 2026 palvault
// SPDX-License-Identifier: MIT

// Command palsav inspects and edits Palworld save files.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"github.com/tidwall/gjson"
	yaml "gopkg.in/yaml.v3"

	"github.com/palvault/palsav"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const usage = `usage: palsav <command> [flags] <file>

commands:
  info     show envelope and header details
  json     project the save to JSON (optionally query a path)
  players  list the player roster of a world save
  swap     exchange two player identities in a world save
  repack   decode and re-encode a save
`

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = cmdInfo(os.Args[2:])
	case "json":
		err = cmdJSON(os.Args[2:])
	case "players":
		err = cmdPlayers(os.Args[2:])
	case "swap":
		err = cmdSwap(os.Args[2:])
	case "repack":
		err = cmdRepack(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func loadSave(path string) (*palsav.Save, palsav.Variant, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, nil, err
	}
	save, variant, err := palsav.Decode(data)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return save, variant, data, nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("info: expected one file argument")
	}
	path := fs.Arg(0)

	save, variant, data, err := loadSave(path)
	if err != nil {
		return err
	}
	gvas, err := save.Marshal()
	if err != nil {
		return err
	}

	h := save.Header
	fmt.Printf("file:           %s (%s)\n", path, humanize.Bytes(uint64(len(data))))
	fmt.Printf("variant:        %s\n", variant)
	fmt.Printf("gvas size:      %s\n", humanize.Bytes(uint64(len(gvas))))
	fmt.Printf("engine:         %d.%d.%d (%s)\n",
		h.EngineVersionMajor, h.EngineVersionMinor, h.EngineVersionPatch, h.EngineVersionBranch)
	fmt.Printf("save class:     %s\n", h.SaveGameClassName)
	fmt.Printf("custom versions: %d\n", len(h.CustomVersions))
	fmt.Printf("root properties: %s\n", strings.Join(save.Root.Names(), ", "))
	return nil
}

func cmdJSON(args []string) error {
	fs := flag.NewFlagSet("json", flag.ExitOnError)
	query := fs.String("query", "", "gjson path to extract from the projection")
	out := fs.StringP("output", "o", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("json: expected one file argument")
	}

	save, _, _, err := loadSave(fs.Arg(0))
	if err != nil {
		return err
	}
	doc, err := save.JSON()
	if err != nil {
		return err
	}

	if *query != "" {
		res := gjson.GetBytes(doc, *query)
		if !res.Exists() {
			return fmt.Errorf("query %q matched nothing", *query)
		}
		doc = []byte(res.Raw)
	}

	if *out != "" {
		return os.WriteFile(*out, doc, 0o644)
	}
	_, err = os.Stdout.Write(append(doc, '\n'))
	return err
}

func cmdPlayers(args []string) error {
	fs := flag.NewFlagSet("players", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "emit the roster as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("players: expected one file argument")
	}

	save, _, _, err := loadSave(fs.Arg(0))
	if err != nil {
		return err
	}
	roster := save.Players()

	if *asJSON {
		doc, err := json.MarshalIndent(roster, "", "  ")
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(doc, '\n'))
		return err
	}

	fmt.Printf("%-36s  %-20s  %5s  %5s  %s\n", "UID", "NAME", "LEVEL", "PALS", "GUILD")
	for _, p := range roster {
		fmt.Printf("%-36s  %-20s  %5d  %5d  %s\n", p.UID, p.Name, p.Level, p.PalCount, p.GuildName)
	}
	return nil
}

// swapScript is the YAML form of a batch of identity swaps.
type swapScript struct {
	Swaps []struct {
		First  string `yaml:"first"`
		Second string `yaml:"second"`
	} `yaml:"swaps"`
}

func cmdSwap(args []string) error {
	fs := flag.NewFlagSet("swap", flag.ExitOnError)
	first := fs.String("first", "", "first player UID")
	second := fs.String("second", "", "second player UID")
	script := fs.String("script", "", "YAML file listing swap pairs")
	out := fs.StringP("output", "o", "", "output path (default: overwrite input)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("swap: expected one file argument")
	}
	path := fs.Arg(0)

	type pair struct{ a, b palsav.GUID }
	var pairs []pair
	switch {
	case *script != "":
		raw, err := os.ReadFile(*script)
		if err != nil {
			return err
		}
		var sc swapScript
		if err := yaml.Unmarshal(raw, &sc); err != nil {
			return fmt.Errorf("parse %s: %w", *script, err)
		}
		for _, s := range sc.Swaps {
			a, err := palsav.ParseGUID(s.First)
			if err != nil {
				return err
			}
			b, err := palsav.ParseGUID(s.Second)
			if err != nil {
				return err
			}
			pairs = append(pairs, pair{a, b})
		}
	case *first != "" && *second != "":
		a, err := palsav.ParseGUID(*first)
		if err != nil {
			return err
		}
		b, err := palsav.ParseGUID(*second)
		if err != nil {
			return err
		}
		pairs = append(pairs, pair{a, b})
	default:
		return fmt.Errorf("swap: need --first and --second, or --script")
	}

	save, variant, _, err := loadSave(path)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		log.Infof("swapping %s <-> %s", p.a, p.b)
		palsav.SwapIdentity(save.Root, p.a, p.b)
	}

	encoded, err := save.Encode(variant)
	if err != nil {
		return err
	}
	if *out == "" {
		*out = path
	}
	if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		return err
	}
	log.Infof("wrote %s (%s)", *out, humanize.Bytes(uint64(len(encoded))))
	return nil
}

func cmdRepack(args []string) error {
	fs := flag.NewFlagSet("repack", flag.ExitOnError)
	out := fs.StringP("output", "o", "", "output path (default: overwrite input)")
	variantName := fs.String("variant", "", "target framing: single-zlib or double-zlib (default: keep)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("repack: expected one file argument")
	}
	path := fs.Arg(0)

	save, variant, _, err := loadSave(path)
	if err != nil {
		return err
	}
	switch *variantName {
	case "":
	case "single-zlib":
		variant = palsav.VariantSingleZlib
	case "double-zlib":
		variant = palsav.VariantDoubleZlib
	default:
		return fmt.Errorf("repack: unknown variant %q", *variantName)
	}

	encoded, err := save.Encode(variant)
	if err != nil {
		return err
	}
	if *out == "" {
		*out = path
	}
	if err := os.WriteFile(*out, encoded, 0o644); err != nil {
		return err
	}
	log.Infof("wrote %s as %s (%s)", *out, variant, humanize.Bytes(uint64(len(encoded))))
	return nil
}
