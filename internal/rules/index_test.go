package rules

import "testing"

func testRule(messageID string) *Rule {
	return &Rule{
		GuildID:   "guild1",
		ChannelID: "chan1",
		MessageID: messageID,
		Type:      TypeStandard,
		EmojiRoles: []EmojiRole{
			{Emoji: "🔥", RoleID: "role1"},
			{Emoji: "🌊", RoleID: "role2"},
		},
	}
}

func TestIndexLookupInsertRemove(t *testing.T) {
	idx := NewIndex()

	if _, ok := idx.Lookup("msg1"); ok {
		t.Fatal("Expected lookup miss on empty index")
	}

	idx.Insert(testRule("msg1"))
	rule, ok := idx.Lookup("msg1")
	if !ok {
		t.Fatal("Expected lookup hit after insert")
	}
	if rule.MessageID != "msg1" {
		t.Errorf("Expected msg1, got %s", rule.MessageID)
	}

	idx.Remove("msg1")
	if _, ok := idx.Lookup("msg1"); ok {
		t.Error("Expected lookup miss after remove")
	}

	// Removing again must be a no-op
	idx.Remove("msg1")
	if idx.Len() != 0 {
		t.Errorf("Expected empty index, got %d entries", idx.Len())
	}
}

func TestIndexInsertReplaces(t *testing.T) {
	idx := NewIndex()
	idx.Insert(testRule("msg1"))

	replacement := testRule("msg1")
	replacement.Type = TypeUnique
	idx.Insert(replacement)

	rule, _ := idx.Lookup("msg1")
	if rule.Type != TypeUnique {
		t.Errorf("Expected replacement rule, got type %s", rule.Type)
	}
	if idx.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", idx.Len())
	}
}

func TestRoleFor(t *testing.T) {
	rule := testRule("msg1")

	if roleID, ok := rule.RoleFor("🌊"); !ok || roleID != "role2" {
		t.Errorf("Expected role2 for 🌊, got %q (%v)", roleID, ok)
	}
	if _, ok := rule.RoleFor("🍙"); ok {
		t.Error("Expected miss for unbound emoji")
	}
}

func TestValidType(t *testing.T) {
	if !ValidType(TypeStandard) || !ValidType(TypeUnique) {
		t.Error("Expected STANDARD and UNIQUE to be valid")
	}
	if ValidType(Type("SOMETHING")) {
		t.Error("Expected unknown type to be invalid")
	}
}
