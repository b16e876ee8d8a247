package handler

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestComponentArg(t *testing.T) {
	assert.Equal(t, "abc:def", ComponentArg("register_confirm:abc:def"))
	assert.Equal(t, "", ComponentArg("register_button"))
}

func TestOnInteractionCreateRoutesByPrefix(t *testing.T) {
	var got string
	AddComponentHandler("test_button", func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		got = i.MessageComponentData().CustomID
	})

	OnInteractionCreate(nil, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: "test_button:session-1"},
	}})
	assert.Equal(t, "test_button:session-1", got)
}

func TestOnMessageCreateOnlyRoutesUserDMs(t *testing.T) {
	var seen []string
	AddDMHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		seen = append(seen, m.Content)
	})
	s := &discordgo.Session{}

	dm := func(content, guildID string, bot bool) *discordgo.MessageCreate {
		return &discordgo.MessageCreate{Message: &discordgo.Message{
			Content: content,
			GuildID: guildID,
			Author:  &discordgo.User{ID: "1", Bot: bot},
		}}
	}
	OnMessageCreate(s, dm("guild", "g1", false))
	OnMessageCreate(s, dm("bot", "", true))
	OnMessageCreate(s, dm("hello", "", false))

	assert.Equal(t, []string{"hello"}, seen)
}
