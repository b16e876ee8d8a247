package main

import (
	"os"

	"github.com/spf13/pflag"

	"regbot/bot"
	"regbot/config"
)

func main() {
	flags := pflag.NewFlagSet("regbot", pflag.ExitOnError)
	config.AddFlags(flags)
	flags.Parse(os.Args[1:])

	bot.Start(flags)
}
