package main

import "flag"

type flagSet struct {
	*flag.FlagSet
	configPath string
}

func newFlagSet() *flagSet {
	fs := &flagSet{FlagSet: flag.NewFlagSet("validatord", flag.ContinueOnError)}
	fs.StringVar(&fs.configPath, "config", "config.yaml", "path to the validator's YAML configuration file")
	return fs
}
