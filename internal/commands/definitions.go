package commands

import "github.com/bwmarrin/discordgo"

func GetCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:         "play",
			Description:  "Play audio from a URL in your voice channel",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "input",
					Description: "URL of the audio to play",
					Required:    true,
				},
			},
		},
		{
			Name:         "sound",
			Description:  "Play a sound from the sound library",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Name of the sound",
					Required:    true,
				},
			},
		},
		{
			Name:         "stop",
			Description:  "Stop playback and leave the voice channel",
			DMPermission: boolPtr(false),
		},
		{
			Name:         "help",
			Description:  "Show what this bot can do",
			DMPermission: boolPtr(false),
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
