package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/yone9212/momijibot/internal/voice"
)

func HandleStop(s *discordgo.Session, i *discordgo.InteractionCreate, vm *voice.Manager) {
	vm.Stop(i.GuildID)
	respondText(s, i, "Stopped playback.")
}

func HandleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Color: embedColor,
		Title: "momijibot",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "/play input", Value: "Play audio from a URL in your voice channel.", Inline: false},
			{Name: "/sound name", Value: "Play a sound from the sound library.", Inline: false},
			{Name: "/stop", Value: "Stop playback.", Inline: false},
			{Name: "/help", Value: "Show this message.", Inline: false},
		},
	})
}
