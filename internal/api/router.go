// Package api wires the gin router: identity glue, lobby CRUD stubs,
// the table websocket upgrade, and the Prometheus metrics endpoint.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pokerserver/internal/identity"
	"pokerserver/internal/session"
	"pokerserver/internal/tablemanager"
	"pokerserver/internal/tournament"
)

// Server bundles the collaborators the router dispatches to.
type Server struct {
	Tables      *tablemanager.Manager
	Tournaments *tournament.Manager
	Identity    *identity.Verifier
	users       *userDirectory
	connSeq     int
}

// NewServer constructs the gin-backed HTTP/websocket frontend.
// verifier may be nil, in which case all initData is treated as guest.
func NewServer(tables *tablemanager.Manager, tournaments *tournament.Manager, verifier *identity.Verifier) *Server {
	return &Server{
		Tables:      tables,
		Tournaments: tournaments,
		Identity:    verifier,
		users:       newUserDirectory(),
	}
}

// Router returns the configured gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/me", s.handleMe)
	r.GET("/top", s.handleTop)

	r.POST("/lobby/create", s.handleLobbyCreate)
	r.GET("/lobby/:code", s.handleLobbyGet)
	r.POST("/lobby/:code/join", s.handleLobbyJoin)
	r.POST("/lobby/:code/leave", s.handleLobbyLeave)
	r.POST("/lobby/:code/start", s.handleLobbyStart)
	r.GET("/my-lobbies", s.handleMyLobbies)

	r.GET("/tables/:tableId", s.handleTableSocket)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

type meRequest struct {
	InitData string `json:"initData"`
}

func (s *Server) handleMe(c *gin.Context) {
	var req meRequest
	_ = c.ShouldBindJSON(&req)

	var userID, displayName string
	if req.InitData == "" || s.Identity == nil {
		userID, displayName = "guest", "Guest"
	} else {
		user, err := s.Identity.Verify(req.InitData)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		userID = fmt.Sprintf("%d", user.ID)
		displayName = user.FirstName
		if displayName == "" {
			displayName = "Player"
		}
	}

	u := s.users.getOrCreate(userID, displayName)
	c.JSON(http.StatusOK, gin.H{
		"user_id":      u.UserID,
		"display_name": u.DisplayName,
		"balance":      u.Balance,
	})
}

func (s *Server) handleTop(c *gin.Context) {
	top := s.users.top(10)
	out := make([]gin.H, 0, len(top))
	for _, u := range top {
		out = append(out, gin.H{"displayName": u.DisplayName, "balance": u.Balance})
	}
	c.JSON(http.StatusOK, gin.H{"top": out})
}

// Lobby CRUD is out of scope for this core (an external lobby
// subsystem owns it); these handlers only satisfy the documented JSON
// shapes so clients wired against this server don't 404.
func (s *Server) handleLobbyCreate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"code": "", "status": "not_implemented"})
}

func (s *Server) handleLobbyGet(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "lobby not found"})
}

func (s *Server) handleLobbyJoin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "not_implemented"})
}

func (s *Server) handleLobbyLeave(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "not_implemented"})
}

func (s *Server) handleLobbyStart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "not_implemented"})
}

func (s *Server) handleMyLobbies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lobbies": []string{}})
}

func (s *Server) handleTableSocket(c *gin.Context) {
	tableID := c.Param("tableId")
	userID := c.Query("user_id")
	displayName := c.Query("display_name")
	if userID == "" {
		c.Writer.WriteHeader(http.StatusBadRequest)
		return
	}
	if displayName == "" {
		displayName = "Guest"
	}

	t, err := s.Tables.GetOrCreate(tableID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.connSeq++
	connID := fmt.Sprintf("%s-%d", userID, s.connSeq)
	session.Serve(c.Writer, c.Request, t, userID, displayName, connID)
}
