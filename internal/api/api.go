package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/yone9212/momijibot/internal/config"
	"github.com/yone9212/momijibot/internal/rules"
)

// Store is the system-of-record side of rule mutations. Pushes are
// best-effort: the in-memory index is authoritative for the running process.
type Store interface {
	SaveReactionRole(ctx context.Context, rule *rules.Rule) error
	DeleteReactionRole(ctx context.Context, guildID, messageID string) error
}

type API struct {
	router  *mux.Router
	discord Discord
	index   *rules.Index
	store   Store
	config  *config.Config
	selfID  func() string
}

func New(cfg *config.Config, d Discord, index *rules.Index, store Store, selfID func() string) *API {
	api := &API{
		router:  mux.NewRouter(),
		discord: d,
		index:   index,
		store:   store,
		config:  cfg,
		selfID:  selfID,
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.Use(a.authMiddleware)

	a.router.HandleFunc("/reaction_roles/{guild_id}/{channel_id}", a.handleCreateRule).Methods("POST")
	a.router.HandleFunc("/reaction_roles/{guild_id}/{channel_id}/{message_id}", a.handleDeleteRule).Methods("DELETE")

	a.router.HandleFunc("/guilds", a.handleListGuilds).Methods("GET")
	a.router.HandleFunc("/guilds/{guild_id}/channels", a.handleListChannels).Methods("GET")
	a.router.HandleFunc("/guilds/{guild_id}/roles", a.handleListRoles).Methods("GET")

	a.router.HandleFunc("/guilds/{guild_id}/channels/{channel_id}/permissions/{action}", a.handleChannelPermission).Methods("GET")
	a.router.HandleFunc("/guilds/{guild_id}/roles/{role_id}/permissions/give", a.handleRolePermission).Methods("GET")
}

func (a *API) Start() error {
	corsOptions := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}

	handler := cors.New(corsOptions).Handler(a.router)

	log.Printf("API server listening on http://%s", a.config.WebBind)
	return http.ListenAndServe(a.config.WebBind, handler)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
