package api

import (
	"context"

	"rollcall-backend/internal/components/assert"
	"rollcall-backend/internal/components/telemetry"
	"rollcall-backend/internal/roster"
	"rollcall-backend/internal/snapshot"

	"github.com/gin-gonic/gin"
)

// RosterSource provides the current member list.
type RosterSource interface {
	Load(ctx context.Context) ([]roster.Member, error)
}

type RouterConfig struct {
	Cache *snapshot.Cache
	// Roster is optional, without it members carry no current office data
	// and /api/roster answers 404.
	Roster          RosterSource
	PageSize        int
	DefaultMemberID int64
	Tel             telemetry.API
}

type handler struct {
	cache           *snapshot.Cache
	roster          RosterSource
	pageSize        int
	defaultMemberID int64
	tel             telemetry.API
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	assert.NotNil(cfg.Cache)
	assert.NotNil(cfg.Tel)

	tel := telemetry.NewScopedAPI("api", cfg.Tel)
	h := handler{
		cache:           cfg.Cache,
		roster:          cfg.Roster,
		pageSize:        cfg.PageSize,
		defaultMemberID: cfg.DefaultMemberID,
		tel:             tel,
	}
	if h.pageSize <= 0 {
		h.pageSize = snapshot.DefaultPageSize
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestTrace())
	router.Use(RequestLogger(tel))

	router.GET("/healthcheck", h.healthcheck)

	api := router.Group("/api")
	{
		api.GET("/votes", h.listVotes)
		api.GET("/votes/:id", h.getVote)
		api.GET("/search/votes", h.searchVotes)
		api.GET("/members", h.listMembers)
		api.GET("/members/:id", h.getMember)
		api.GET("/search/members", h.searchMembers)
		api.GET("/geo-areas", h.geoAreas)
		api.GET("/roster", h.listRoster)
	}

	return router
}

func (h handler) healthcheck(c *gin.Context) {
	loaded, at := h.cache.Loaded()
	payload := gin.H{
		"status": "ok",
		"loaded": loaded,
		"votes":  h.cache.Len(),
	}
	if loaded {
		payload["loaded_at"] = at
	}
	RespondOK(c, payload)
}
