package main

import (
	"strings"
)

type daemonOptions struct {
	configPath string
	stages     []string
}

// resolveOptions reads the stage list from the arguments, falling back to
// DISCFLIGHT_STAGES (comma separated). DISCFLIGHT_CONFIG selects the config
// file.
func resolveOptions(args []string, getenv func(string) string) daemonOptions {
	opts := daemonOptions{configPath: strings.TrimSpace(getenv("DISCFLIGHT_CONFIG"))}
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			opts.stages = append(opts.stages, arg)
		}
	}
	if len(opts.stages) > 0 {
		return opts
	}
	for _, name := range strings.Split(getenv("DISCFLIGHT_STAGES"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			opts.stages = append(opts.stages, name)
		}
	}
	return opts
}
