package directory

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Directory over a discordgo session for one guild.
type Discord struct {
	s       *discordgo.Session
	guildID string
	roleID  string
}

func NewDiscord(s *discordgo.Session, guildID, roleID string) *Discord {
	return &Discord{s: s, guildID: guildID, roleID: roleID}
}

func (d *Discord) OpenDM(ctx context.Context, userID string) (string, error) {
	ch, err := d.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("open dm with %s: %w", userID, Classify(err))
	}
	return ch.ID, nil
}

func (d *Discord) Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (string, error) {
	m, err := d.s.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send to %s: %w", channelID, Classify(err))
	}
	return m.ID, nil
}

func (d *Discord) Edit(ctx context.Context, edit *discordgo.MessageEdit) error {
	if _, err := d.s.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit message %s: %w", edit.ID, Classify(err))
	}
	return nil
}

func (d *Discord) Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	m, err := d.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch message %s: %w", messageID, Classify(err))
	}
	return m, nil
}

func (d *Discord) GrantRole(ctx context.Context, userID string) error {
	if d.roleID == "" {
		return ErrRoleNotConfigured
	}
	if err := d.s.GuildMemberRoleAdd(d.guildID, userID, d.roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("grant role %s to %s: %w", d.roleID, userID, Classify(err))
	}
	return nil
}

func (d *Discord) Member(ctx context.Context, userID string) (*discordgo.Member, error) {
	m, err := d.s.GuildMember(d.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", userID, Classify(err))
	}
	return m, nil
}
