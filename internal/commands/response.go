package commands

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

const embedColor = 0x4c8afb

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Printf("Failed to respond to interaction: %v", err)
	}
}

func respondText(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Color:       embedColor,
		Description: text,
	})
}

// RespondError is the generic reply for a command handler that failed in an
// unexpected way. Details stay in the logs.
func RespondError(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respondText(s, i, "An error occured.")
}
