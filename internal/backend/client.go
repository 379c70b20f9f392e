// Package backend talks to the external system of record that persists
// reaction rules, guild state and member-message settings.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yone9212/momijibot/internal/rules"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Guild mirrors the backend's guild record.
type Guild struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Icon      *string `json:"icon"`
	BotJoined bool    `json:"bot_joined"`
}

// ChannelRef is a channel reference inside a backend record.
type ChannelRef struct {
	ID string `json:"id"`
}

// TemplateMessage is a configurable welcome or leave message.
type TemplateMessage struct {
	Channel ChannelRef `json:"channel"`
	Message string     `json:"message"`
}

// Role is a backend role reference.
type Role struct {
	ID string `json:"id"`
}

// ReactionRoles returns the persisted reaction rules for a guild.
func (c *Client) ReactionRoles(ctx context.Context, guildID string) ([]*rules.Rule, error) {
	var entries []*rules.Rule
	err := c.get(ctx, "/reaction_role/reaction_roles/"+guildID, url.Values{}, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reaction roles for guild %s: %w", guildID, err)
	}
	for _, entry := range entries {
		entry.GuildID = guildID
	}
	return entries, nil
}

// SaveReactionRole persists a newly created rule.
func (c *Client) SaveReactionRole(ctx context.Context, rule *rules.Rule) error {
	return c.send(ctx, http.MethodPost, "/reaction_role/reaction_role", rule)
}

// DeleteReactionRole removes a persisted rule by carrier message ID.
func (c *Client) DeleteReactionRole(ctx context.Context, guildID, messageID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete,
		"/reaction_role/reaction_role/"+guildID+"/"+messageID, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// PutGuild records whether the bot is currently a member of the guild.
func (c *Client) PutGuild(ctx context.Context, guild Guild) error {
	return c.send(ctx, http.MethodPut, "/guild/guild", guild)
}

// WelcomeMessage returns the guild's welcome message, or nil if none is set.
func (c *Client) WelcomeMessage(ctx context.Context, guildID string) (*TemplateMessage, error) {
	return c.templateMessage(ctx, "/welcome_message/welcome_message", guildID)
}

// LeaveMessage returns the guild's leave message, or nil if none is set.
func (c *Client) LeaveMessage(ctx context.Context, guildID string) (*TemplateMessage, error) {
	return c.templateMessage(ctx, "/leave_message/leave_message", guildID)
}

// AutoRoles returns the roles granted automatically to new members.
func (c *Client) AutoRoles(ctx context.Context, guildID string) ([]Role, error) {
	params := url.Values{}
	params.Set("guild_id", guildID)
	var roles []Role
	if err := c.get(ctx, "/auto_role/auto_roles", params, &roles); err != nil {
		return nil, fmt.Errorf("failed to fetch auto roles for guild %s: %w", guildID, err)
	}
	return roles, nil
}

func (c *Client) templateMessage(ctx context.Context, path, guildID string) (*TemplateMessage, error) {
	params := url.Values{}
	params.Set("guild_id", guildID)
	var msg *TemplateMessage
	if err := c.get(ctx, path, params, &msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}
	params.Set("api_key", c.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}
