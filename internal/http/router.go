package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/squadsvirtuais/api/internal/catalog"
	"github.com/squadsvirtuais/api/internal/config"
	"github.com/squadsvirtuais/api/internal/decision"
	httpmiddleware "github.com/squadsvirtuais/api/internal/http/middleware"
	"github.com/squadsvirtuais/api/internal/matrix"
	"github.com/squadsvirtuais/api/internal/problem"
	"github.com/squadsvirtuais/api/internal/proposal"
	"github.com/squadsvirtuais/api/internal/service"
	"github.com/squadsvirtuais/api/internal/squad"
	"github.com/squadsvirtuais/api/internal/suggestion"
	"github.com/squadsvirtuais/api/internal/workspace"
)

// Deps reúne os serviços expostos pela API.
type Deps struct {
	Config      *config.Config
	Auth        *service.AuthService
	Access      *service.AccessService
	Workspaces  *workspace.Service
	Catalog     *catalog.Service
	Squads      *squad.Service
	Problems    *problem.Service
	Matrix      *matrix.Service
	Decisions   *decision.Service
	Proposals   *proposal.Service
	Suggestions *suggestion.Service
	// Checks são as dependências verificadas em /ready (ex.: postgres, redis).
	Checks map[string]func(context.Context) error
}

type Handler struct {
	Deps
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	h := &Handler{
		Deps:          deps,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "rota não encontrada", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "método não permitido", nil)
	})

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Route("/auth", func(a chi.Router) {
			a.Post("/google", h.LoginGoogle)
			a.Get("/github/login", h.GitHubLogin)
			a.Get("/github/callback", h.GitHubCallback)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(deps.Auth))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)
		private.Post("/auth/logout", h.Logout)

		private.Route("/workspaces", func(ws chi.Router) {
			ws.Get("/", h.ListWorkspaces)
			ws.Post("/", h.CreateWorkspace)
			ws.Route("/{workspaceID}", func(w chi.Router) {
				w.Use(httpmiddleware.WorkspaceScope(deps.Access))
				h.mountWorkspace(w)
			})
		})

		private.Route("/squads/{squadID}", func(s chi.Router) {
			s.Use(httpmiddleware.SquadScope(deps.Access))
			h.mountSquad(s)
		})
	})

	return r
}

func (h *Handler) mountWorkspace(r chi.Router) {
	r.Get("/", h.GetWorkspace)
	r.Patch("/", h.UpdateWorkspace)
	r.Delete("/", h.DeleteWorkspace)
	r.Get("/members", h.ListWorkspaceMembers)
	r.Post("/members", h.AddWorkspaceMember)

	r.Get("/squads", h.ListSquads)
	r.Post("/squads", h.CreateSquad)

	r.Route("/personas", func(p chi.Router) {
		p.Get("/", h.ListPersonas)
		p.Post("/", h.CreatePersona)
		p.Get("/{personaID}", h.GetPersona)
		p.Patch("/{personaID}", h.UpdatePersona)
		p.Delete("/{personaID}", h.DeletePersona)
		p.Post("/{personaID}/duplicate", h.DuplicatePersona)
	})
	r.Route("/roles", func(rr chi.Router) {
		rr.Get("/", h.ListRoles)
		rr.Post("/", h.CreateRole)
		rr.Get("/{roleID}", h.GetRole)
		rr.Patch("/{roleID}", h.UpdateRole)
		rr.Delete("/{roleID}", h.DeleteRole)
		rr.Post("/{roleID}/duplicate", h.DuplicateRole)
	})
	r.Route("/problem-statements", func(p chi.Router) {
		p.Get("/", h.ListProblems)
		p.Post("/", h.CreateProblem)
		p.Get("/{problemID}", h.GetProblem)
		p.Patch("/{problemID}", h.UpdateProblem)
		p.Delete("/{problemID}", h.DeleteProblem)
	})
}

func (h *Handler) mountSquad(r chi.Router) {
	r.Get("/", h.GetSquad)
	r.Patch("/", h.UpdateSquad)
	r.Delete("/", h.DeleteSquad)

	r.Get("/members", h.ListSquadMembers)
	r.Post("/members", h.AddSquadMember)
	r.Delete("/members/{memberID}", h.RemoveSquadMember)
	r.Put("/members/{memberID}/role", h.AssignMemberRole)
	r.Delete("/members/{memberID}/role", h.UnassignMemberRole)
	r.Get("/member-roles", h.ListMemberRoles)

	r.Route("/roles", func(rr chi.Router) {
		rr.Get("/", h.ListSquadRoles)
		rr.Post("/", h.ActivateSquadRole)
		rr.Patch("/{squadRoleID}", h.UpdateSquadRole)
		rr.Delete("/{squadRoleID}", h.RemoveSquadRole)
		rr.Post("/{squadRoleID}/replace", h.ReplaceSquadRole)
	})
	r.Route("/personas", func(p chi.Router) {
		p.Get("/", h.ListSquadPersonas)
		p.Post("/", h.AddSquadPersona)
		p.Patch("/{squadPersonaID}", h.UpdateSquadPersona)
		p.Delete("/{squadPersonaID}", h.RemoveSquadPersona)
		p.Post("/{squadPersonaID}/replace", h.ReplaceSquadPersona)
	})

	r.Get("/phases", h.ListPhases)
	r.Post("/phases", h.AppendPhase)
	r.Delete("/phases/{phaseID}", h.DeletePhase)
	r.Get("/sections", h.ListSections)
	r.Get("/problem-statement", h.SquadProblem)
	r.Get("/decisions", h.ListDecisions)

	r.Route("/validation-matrix", func(m chi.Router) {
		m.Get("/", h.LatestMatrix)
		m.Get("/versions", h.ListMatrixVersions)
		m.Post("/versions", h.SaveMatrixVersion)
		m.Get("/versions/{version}", h.GetMatrixVersion)
	})

	r.Route("/proposals", func(p chi.Router) {
		p.Get("/", h.ListProposals)
		p.Post("/", h.GenerateProposal)
		p.Get("/{proposalID}", h.GetProposal)
		p.Post("/{proposalID}/confirm", h.ConfirmProposal)
		p.Post("/{proposalID}/discard", h.DiscardProposal)
		p.Post("/{proposalID}/breakdown", h.BreakdownProposal)
	})
	r.Route("/suggestions", func(s chi.Router) {
		s.Get("/", h.ListSuggestions)
		s.Post("/{suggestionID}/approve", h.ApproveSuggestion)
		s.Post("/{suggestionID}/reject", h.RejectSuggestion)
	})
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready verifica as dependências configuradas.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			log.Error().Err(err).Str("component", "ready").Str("check", name).Msg("dependência indisponível")
			failed[name] = "indisponível"
		}
	}
	if len(failed) > 0 {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "dependências indisponíveis", failed)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}
