package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/yone9212/momijibot/internal/commands"
)

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand || i.GuildID == "" {
		return
	}

	data := i.ApplicationCommandData()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Caught error in command handler")
			log.Printf("Executer: %s", i.Member.User.Username)
			log.Printf("Command: %s", data.Name)
			log.Printf("Options: %v", data.Options)
			log.Printf("Error: %v", r)
			b.respondUnexpectedError(s, i)
		}
	}()

	switch data.Name {
	case "play":
		commands.HandlePlay(s, i, b.voice, b.resolver)
	case "sound":
		commands.HandleSound(s, i, b.voice, b.library)
	case "stop":
		commands.HandleStop(s, i, b.voice)
	case "help":
		commands.HandleHelp(s, i)
	}
}

func (b *Bot) respondUnexpectedError(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				{
					Color:       0xfa4b4b,
					Title:       "❗Error❗",
					Description: "An unexpected error occured while executing that command.\n**Please contact an admin or dev so it can be fixed!**",
				},
			},
		},
	})
	if err != nil {
		log.Printf("Failed to send error response: %v", err)
	}
}
