package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type fakeSource struct {
	byGuild map[string][]*Rule
	errs    map[string]error
}

func (f *fakeSource) ReactionRoles(ctx context.Context, guildID string) ([]*Rule, error) {
	if err := f.errs[guildID]; err != nil {
		return nil, err
	}
	return f.byGuild[guildID], nil
}

type fakeWarmer struct {
	fetched []string
}

func (f *fakeWarmer) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.fetched = append(f.fetched, messageID)
	return &discordgo.Message{ID: messageID}, nil
}

func TestSynchronizerLoad(t *testing.T) {
	idx := NewIndex()
	source := &fakeSource{
		byGuild: map[string][]*Rule{
			"guild1": {testRule("msg1"), testRule("msg2")},
		},
	}
	warmer := &fakeWarmer{}

	NewSynchronizer(idx, source, warmer).Load(context.Background(), []string{"guild1"})

	if idx.Len() != 2 {
		t.Fatalf("Expected 2 rules, got %d", idx.Len())
	}
	if len(warmer.fetched) != 2 {
		t.Errorf("Expected 2 prefetched messages, got %d", len(warmer.fetched))
	}
}

func TestSynchronizerLoadSkipsFailingGuild(t *testing.T) {
	idx := NewIndex()
	source := &fakeSource{
		byGuild: map[string][]*Rule{
			"guild2": {testRule("msg3")},
		},
		errs: map[string]error{"guild1": errors.New("backend down")},
	}

	NewSynchronizer(idx, source, nil).Load(context.Background(), []string{"guild1", "guild2"})

	if idx.Len() != 1 {
		t.Fatalf("Expected 1 rule after skipping failing guild, got %d", idx.Len())
	}
	if _, ok := idx.Lookup("msg3"); !ok {
		t.Error("Expected rule from healthy guild to be loaded")
	}
}
