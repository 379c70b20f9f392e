package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestRenderTemplate(t *testing.T) {
	user := &discordgo.User{ID: "42", Username: "momiji"}

	got := renderTemplate("Welcome {mention}! {username} joined {server_name}.", user, "Maple Grove")
	want := "Welcome <@42>! momiji joined Maple Grove."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRenderTemplateWithoutPlaceholders(t *testing.T) {
	user := &discordgo.User{ID: "42", Username: "momiji"}

	got := renderTemplate("A member left.", user, "Maple Grove")
	if got != "A member left." {
		t.Errorf("Expected template to pass through unchanged, got %q", got)
	}
}
