package utils

import (
	"slices"

	"github.com/bwmarrin/discordgo"

	"regbot/config"
)

// CheckAuth reports whether the member may run administrative actions:
// configured developers, configured admin roles, or Manage Server /
// Administrator permission in the channel.
func CheckAuth(userID string, roles []string, permissions int64) bool {
	authConfig := config.Cfg.Commands.Auth

	if slices.Contains(authConfig.Developers, userID) {
		return true
	}

	for _, role := range roles {
		if slices.Contains(authConfig.AdminsRoles, role) {
			return true
		}
	}

	return permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageGuild) != 0
}

// InAdminChannel reports whether channelID is the configured admin channel.
// Any channel is accepted when none is configured.
func InAdminChannel(channelID string) bool {
	admin := config.Cfg.Registration.AdminChannelID
	return admin == "" || admin == channelID
}
