package commands

import (
	"context"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/yone9212/momijibot/internal/media"
	"github.com/yone9212/momijibot/internal/voice"
)

func HandlePlay(s *discordgo.Session, i *discordgo.InteractionCreate, vm *voice.Manager, resolver media.Resolver) {
	input := strings.TrimSpace(stringOption(i, "input"))
	if input == "" {
		respondText(s, i, "Input cannot be empty!")
		return
	}

	channelID := voiceChannelOf(s, i.GuildID, i.Member.User.ID)
	if channelID == "" {
		respondText(s, i, "You need to be in a voice channel to play music!")
		return
	}

	stream, err := resolver.Open(context.Background(), input)
	if err != nil {
		log.Printf("Failed to open %q: %v", input, err)
		respondText(s, i, "Could not find any results for that input.")
		return
	}

	if err := vm.Play(i.GuildID, channelID, stream); err != nil {
		log.Printf("Error playing the audio: %v", err)
		respondText(s, i, "There was an error playing that song.")
		return
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Now playing", Value: input, Inline: false},
			{Name: "Channel", Value: "<#" + channelID + ">", Inline: false},
		},
	})
}
