package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/vinculo/crm-service/internal/core/domain"
	"github.com/vinculo/crm-service/internal/core/repository"
	logicv1 "github.com/vinculo/crm-service/internal/logic/v1"
	"github.com/vinculo/crm-service/middleware"
)

// Deps carries everything the v1 API needs.
type Deps struct {
	Sessions *logicv1.Container
	Provider domain.Provider
	Store    domain.Store
}

// RegisterRoutes mounts the full v1 API: the auth surface plus one CRUD
// surface per dashboard collection, all sharing the generic repository.
func RegisterRoutes(rg *gin.RouterGroup, deps Deps) {
	profiles := repository.NewResource[domain.Profile](deps.Store, "profiles")
	h := NewHandler(deps.Sessions, deps.Provider, profiles)

	rg.POST("/auth/login", h.Login)
	rg.POST("/auth/register", h.Register)
	rg.POST("/auth/logout", h.Logout)
	rg.POST("/auth/password-reset", h.RequestPasswordReset)

	authed := rg.Group("", middleware.RequireAuth(deps.Provider))
	authed.GET("/auth/me", h.GetMe)
	authed.PATCH("/auth/me/profile", h.UpdateMyProfile)
	authed.POST("/auth/password", h.UpdatePassword)

	NewResourceHandler[domain.Lead, domain.CreateLead, domain.LeadPatch](
		repository.NewResource[domain.Lead](deps.Store, "leads"),
		"stage_id", "status_id", "owner_id", "source", "active", "deleted",
	).Register(authed, "/leads")

	NewResourceHandler[domain.Stage, domain.CreateStage, domain.StagePatch](
		repository.NewResource[domain.Stage](deps.Store, "stages"),
		"active", "deleted",
	).Register(authed, "/stages")

	NewResourceHandler[domain.LeadStatus, domain.CreateLeadStatus, domain.LeadStatusPatch](
		repository.NewResource[domain.LeadStatus](deps.Store, "lead_statuses"),
		"active", "deleted",
	).Register(authed, "/lead-statuses")

	NewResourceHandler[domain.Chat, domain.CreateChat, domain.ChatPatch](
		repository.NewResource[domain.Chat](deps.Store, "chats"),
		"lead_id", "channel", "active", "deleted",
	).Register(authed, "/chats")

	NewResourceHandler[domain.Message, domain.CreateMessage, domain.MessagePatch](
		repository.NewResource[domain.Message](deps.Store, "messages"),
		"chat_id", "direction", "active", "deleted",
	).Register(authed, "/messages")

	NewResourceHandler[domain.AgentConfig, domain.CreateAgentConfig, domain.AgentConfigPatch](
		repository.NewResource[domain.AgentConfig](deps.Store, "agent_configs"),
		"enabled", "active", "deleted",
	).Register(authed, "/agent-configs")

	NewResourceHandler[domain.Campaign, domain.CreateCampaign, domain.CampaignPatch](
		repository.NewResource[domain.Campaign](deps.Store, "campaigns"),
		"status", "active", "deleted",
	).Register(authed, "/campaigns")
}
