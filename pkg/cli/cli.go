// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"github.com/jessevdk/go-flags"
)

// Option defines command line options.
type Option struct {
	ConfigFile string `short:"c" long:"config" description:"path to the configuration file"`
	EnvFile    string `short:"e" long:"env-file" description:"path to a dotenv file loaded before reading the environment"`
	ListenAddr string `short:"l" long:"listen" description:"address to listen on (overrides the configuration)"`
	Debug      bool   `short:"d" long:"debug" description:"debug mode"`
	Version    bool   `short:"v" long:"version" description:"display the version and exit"`
}

// Parse returns parsed command-line flags in Option struct.
func Parse(args []string) (*Option, error) {
	opt := &Option{}

	parser := flags.NewParser(opt, flags.Default)
	parser.Name = "callcheckd"
	parser.Usage = "[OPTIONS]"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	return opt, nil
}

// IsHelp returns true if err is of flags.ErrHelp type.
func IsHelp(err error) bool {
	flagsErr, ok := err.(*flags.Error)
	return ok && flagsErr.Type == flags.ErrHelp
}
