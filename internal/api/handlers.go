package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/yone9212/momijibot/internal/rules"
)

const (
	maxMessageLength = 2000
	maxBindings      = 20
)

type createRuleRequest struct {
	Type       string            `json:"type"`
	Message    string            `json:"message"`
	EmojiRoles []rules.EmojiRole `json:"emoji_roles"`
}

func (a *API) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	guildID := vars["guild_id"]
	channelID := vars["channel_id"]

	var req createRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Type == "" || req.Message == "" || len(req.EmojiRoles) == 0 {
		writeError(w, http.StatusBadRequest, "type, message and emoji_roles are required")
		return
	}
	if !rules.ValidType(rules.Type(req.Type)) {
		writeError(w, http.StatusBadRequest, "type must be STANDARD or UNIQUE")
		return
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "message exceeds 2000 characters")
		return
	}
	if len(req.EmojiRoles) > maxBindings {
		writeError(w, http.StatusBadRequest, "at most 20 emoji bindings are allowed")
		return
	}
	seen := make(map[string]bool, len(req.EmojiRoles))
	for _, er := range req.EmojiRoles {
		if er.Emoji == "" || er.RoleID == "" {
			writeError(w, http.StatusBadRequest, "each binding needs an emoji and a role_id")
			return
		}
		if seen[er.Emoji] {
			writeError(w, http.StatusBadRequest, "duplicate emoji in bindings")
			return
		}
		seen[er.Emoji] = true
	}

	if _, err := a.discord.Guild(guildID); err != nil {
		writeError(w, http.StatusNotFound, "guild not found")
		return
	}
	channel, err := a.discord.Channel(channelID)
	if err != nil || channel.GuildID != guildID {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}

	guildRoles, err := a.discord.GuildRoles(guildID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch guild roles")
		return
	}
	roleByID := make(map[string]*discordgo.Role, len(guildRoles))
	for _, role := range guildRoles {
		roleByID[role.ID] = role
	}
	for _, er := range req.EmojiRoles {
		role, ok := roleByID[er.RoleID]
		if !ok {
			writeError(w, http.StatusNotFound, "role not found: "+er.RoleID)
			return
		}
		if role.ID == guildID {
			writeError(w, http.StatusBadRequest, "cannot bind the everyone role")
			return
		}
		if role.Managed {
			writeError(w, http.StatusBadRequest, "cannot bind a managed role: "+er.RoleID)
			return
		}
	}

	msg, err := a.discord.ChannelMessageSend(channelID, req.Message)
	if err != nil {
		log.Printf("Failed to send carrier message in %s: %v", channelID, err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	for _, er := range req.EmojiRoles {
		if err := a.discord.MessageReactionAdd(channelID, msg.ID, er.Emoji); err != nil {
			log.Printf("Failed to react with %s on %s: %v", er.Emoji, msg.ID, err)
			writeError(w, http.StatusInternalServerError, "failed to apply reactions")
			return
		}
	}

	rule := &rules.Rule{
		GuildID:    guildID,
		ChannelID:  channelID,
		MessageID:  msg.ID,
		Type:       rules.Type(req.Type),
		EmojiRoles: req.EmojiRoles,
	}
	a.index.Insert(rule)
	if a.store != nil {
		if err := a.store.SaveReactionRole(r.Context(), rule); err != nil {
			log.Printf("Failed to persist reaction role %s: %v", msg.ID, err)
		}
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message_id": msg.ID})
}

func (a *API) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	guildID := vars["guild_id"]
	channelID := vars["channel_id"]
	messageID := vars["message_id"]

	if err := a.discord.ChannelMessageDelete(channelID, messageID); err != nil {
		// The carrier message may have been removed by hand already.
		log.Printf("Failed to delete carrier message %s: %v", messageID, err)
	}

	a.index.Remove(messageID)
	if a.store != nil {
		if err := a.store.DeleteReactionRole(context.Background(), guildID, messageID); err != nil {
			log.Printf("Failed to delete persisted reaction role %s: %v", messageID, err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

type guildInfo struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Icon *string `json:"icon"`
}

func (a *API) handleListGuilds(w http.ResponseWriter, r *http.Request) {
	guilds, err := a.discord.UserGuilds(200, "", "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list guilds")
		return
	}

	out := make([]guildInfo, 0, len(guilds))
	for _, g := range guilds {
		info := guildInfo{ID: g.ID, Name: g.Name}
		if g.Icon != "" {
			icon := g.Icon
			info.Icon = &icon
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

type channelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (a *API) handleListChannels(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guild_id"]

	channels, err := a.discord.GuildChannels(guildID)
	if err != nil {
		writeError(w, http.StatusNotFound, "guild not found")
		return
	}

	out := make([]channelInfo, 0, len(channels))
	for _, ch := range channels {
		switch ch.Type {
		case discordgo.ChannelTypeGuildText:
			out = append(out, channelInfo{ID: ch.ID, Name: ch.Name, Type: "text"})
		case discordgo.ChannelTypeGuildVoice:
			out = append(out, channelInfo{ID: ch.ID, Name: ch.Name, Type: "voice"})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type roleInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Managed bool   `json:"managed"`
}

func (a *API) handleListRoles(w http.ResponseWriter, r *http.Request) {
	guildID := mux.Vars(r)["guild_id"]

	roles, err := a.discord.GuildRoles(guildID)
	if err != nil {
		writeError(w, http.StatusNotFound, "guild not found")
		return
	}

	out := make([]roleInfo, 0, len(roles))
	for _, role := range roles {
		if role.ID == guildID {
			continue
		}
		out = append(out, roleInfo{ID: role.ID, Name: role.Name, Managed: role.Managed})
	}
	writeJSON(w, http.StatusOK, out)
}

var channelActions = map[string]int64{
	"send":             discordgo.PermissionSendMessages,
	"react":            discordgo.PermissionAddReactions,
	"remove_reactions": discordgo.PermissionManageMessages,
}

func (a *API) handleChannelPermission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	channelID := vars["channel_id"]

	needed, ok := channelActions[vars["action"]]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown permission probe")
		return
	}

	perms, err := a.discord.UserChannelPermissions(a.selfID(), channelID)
	if err != nil {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}

	has := perms&needed == needed || perms&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator
	writeJSON(w, http.StatusOK, map[string]bool{"has_permission": has})
}

// handleRolePermission reports whether the bot can assign the role: it must
// hold Manage Roles (or Administrator) and its highest role must sit above
// the target role.
func (a *API) handleRolePermission(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	guildID := vars["guild_id"]
	roleID := vars["role_id"]

	roles, err := a.discord.GuildRoles(guildID)
	if err != nil {
		writeError(w, http.StatusNotFound, "guild not found")
		return
	}
	roleByID := make(map[string]*discordgo.Role, len(roles))
	for _, role := range roles {
		roleByID[role.ID] = role
	}
	target, ok := roleByID[roleID]
	if !ok {
		writeError(w, http.StatusNotFound, "role not found")
		return
	}

	me, err := a.discord.GuildMember(guildID, a.selfID())
	if err != nil {
		writeError(w, http.StatusNotFound, "bot member not found")
		return
	}

	var canManage bool
	highest := -1
	for _, id := range me.Roles {
		role, ok := roleByID[id]
		if !ok {
			continue
		}
		if role.Permissions&discordgo.PermissionManageRoles != 0 ||
			role.Permissions&discordgo.PermissionAdministrator != 0 {
			canManage = true
		}
		if role.Position > highest {
			highest = role.Position
		}
	}

	has := canManage && highest > target.Position
	writeJSON(w, http.StatusOK, map[string]bool{"has_permission": has})
}
