package rules

import (
	"context"
	"log"

	"github.com/bwmarrin/discordgo"
)

// Source lists persisted rules for a guild. Implemented by backend.Client.
type Source interface {
	ReactionRoles(ctx context.Context, guildID string) ([]*Rule, error)
}

// Warmer fetches a carrier message so later reaction events hit the cache.
// Implemented by *discordgo.Session.
type Warmer interface {
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Synchronizer repopulates the index from the system of record at startup.
type Synchronizer struct {
	index  *Index
	source Source
	warmer Warmer
}

// NewSynchronizer creates a Synchronizer. warmer may be nil to skip message
// prefetching.
func NewSynchronizer(index *Index, source Source, warmer Warmer) *Synchronizer {
	return &Synchronizer{
		index:  index,
		source: source,
		warmer: warmer,
	}
}

// Load pulls the persisted rules for every guild and inserts them into the
// index. A failing guild is logged and skipped; the remaining guilds still
// load. Carrier messages are prefetched best-effort.
func (s *Synchronizer) Load(ctx context.Context, guildIDs []string) {
	for _, guildID := range guildIDs {
		log.Printf("Loading reaction roles for guild %s", guildID)

		entries, err := s.source.ReactionRoles(ctx, guildID)
		if err != nil {
			log.Printf("Failed to load reaction roles for guild %s: %v", guildID, err)
			continue
		}

		for _, rule := range entries {
			s.index.Insert(rule)
			if s.warmer != nil {
				if _, err := s.warmer.ChannelMessage(rule.ChannelID, rule.MessageID); err != nil {
					log.Printf("Failed to prefetch carrier message %s: %v", rule.MessageID, err)
				}
			}
		}

		log.Printf("Loaded %d reaction role(s) for guild %s", len(entries), guildID)
	}
}
