package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/yone9212/momijibot/internal/media"
	"github.com/yone9212/momijibot/internal/voice"
)

func HandleSound(s *discordgo.Session, i *discordgo.InteractionCreate, vm *voice.Manager, library *media.Library) {
	name := stringOption(i, "name")
	if name == "" {
		respondText(s, i, "Tell me which sound to play.")
		return
	}

	channelID := voiceChannelOf(s, i.GuildID, i.Member.User.ID)
	if channelID == "" {
		respondText(s, i, "You need to be in a voice channel to play a sound!")
		return
	}

	stream, err := library.Open(context.Background(), name)
	if err != nil {
		log.Printf("Failed to open sound %q: %v", name, err)
		respondText(s, i, fmt.Sprintf("I don't know a sound called '%s'.", name))
		return
	}

	if err := vm.Play(i.GuildID, channelID, stream); err != nil {
		log.Printf("Error playing sound %q: %v", name, err)
		respondText(s, i, "There was an error playing that sound.")
		return
	}

	respondText(s, i, fmt.Sprintf("Playing '%s'!", name))
}
