package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yone9212/momijibot/internal/rules"
)

func TestReactionRoles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reaction_role/reaction_roles/guild1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "secret" {
			t.Errorf("Expected api_key query parameter")
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"channel_id": "chan1",
				"message_id": "msg1",
				"type":       "UNIQUE",
				"emoji_roles": []map[string]string{
					{"emoji": "🔥", "role_id": "role1"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	entries, err := client.ReactionRoles(context.Background(), "guild1")
	if err != nil {
		t.Fatalf("ReactionRoles returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 rule, got %d", len(entries))
	}
	rule := entries[0]
	if rule.GuildID != "guild1" || rule.MessageID != "msg1" || rule.Type != rules.TypeUnique {
		t.Errorf("Unexpected rule: %+v", rule)
	}
	if roleID, ok := rule.RoleFor("🔥"); !ok || roleID != "role1" {
		t.Errorf("Expected 🔥 bound to role1, got %q (%v)", roleID, ok)
	}
}

func TestPutGuild(t *testing.T) {
	var got Guild
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	err := client.PutGuild(context.Background(), Guild{ID: "guild1", Name: "test", BotJoined: true})
	if err != nil {
		t.Fatalf("PutGuild returned error: %v", err)
	}
	if got.ID != "guild1" || !got.BotJoined {
		t.Errorf("Unexpected payload: %+v", got)
	}
}

func TestBackendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	if _, err := client.AutoRoles(context.Background(), "guild1"); err == nil {
		t.Error("Expected error for 500 response")
	}
}
