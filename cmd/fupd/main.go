// Command fupd resolves a set of configured AS-sets, route-sets, and
// autonomous system numbers against an irrd-protocol IRR mirror, compresses
// the resulting prefixes, and writes one Cisco prefix-list/prefix-set
// configuration file per router.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"fupd/pkg/config"
)

var version = "dev" // set by the release build process

var opts struct {
	ConfigFile  string `short:"c" long:"config" description:"Path to the TOML configuration file" default:"/etc/fupd/fupd.toml"`
	DryRun      bool   `short:"d" long:"dry-run" description:"Resolve and aggregate, but don't write any output files"`
	Verbose     bool   `short:"v" long:"verbose" description:"Show debug-level log messages"`
	ShowVersion bool   `long:"version" description:"Show version and exit"`
}

func main() {
	if _, err := flags.ParseArgs(&opts, os.Args); err != nil {
		if !strings.Contains(err.Error(), "Usage") {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	if opts.ShowVersion {
		fmt.Printf("fupd version %s\n", version)
		os.Exit(0)
	}

	if opts.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	log.Debugf("loading config from %s", opts.ConfigFile)
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := Run(cfg, opts.DryRun); err != nil {
		log.Fatalf("%v", err)
	}
}
