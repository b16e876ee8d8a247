package command

import (
	"github.com/bwmarrin/discordgo"

	"regbot/command/def"
)

// AllCommands contains all of the commands
var AllCommands = []*discordgo.ApplicationCommand{
	def.RegisterAdminCommand,
	def.PingCommand,
}
