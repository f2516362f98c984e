package command

import (
	"github.com/bwmarrin/discordgo"
)

// EmbedColor is the accent colour of embeds the bot sends.
const EmbedColor = 0x0033ad

// RespondDeferred acknowledges an interaction publicly; the reply is sent
// later with EditResponse.
func RespondDeferred(s InteractionSession, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// RespondEphemeral sends an ephemeral message response to an interaction.
func RespondEphemeral(s InteractionSession, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// RespondEmbedEphemeral sends an ephemeral embed response to an interaction.
func RespondEmbedEphemeral(s InteractionSession, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	if embed.Color == 0 {
		embed.Color = EmbedColor
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:  discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// EditResponse replaces the content of a deferred or sent response.
func EditResponse(s InteractionSession, i *discordgo.InteractionCreate, content string) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
	return err
}

// EditResponseWithFiles replaces the content of a response and attaches files.
func EditResponseWithFiles(s InteractionSession, i *discordgo.InteractionCreate, content string, files ...*discordgo.File) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
		Files:   files,
	})
	return err
}
