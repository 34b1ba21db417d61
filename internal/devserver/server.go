package devserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dkeye/meetsync/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Mode       string
	Secret     string
	StaticPath string
	TokenTTL   time.Duration

	AllowedOrigins []string

	ReadLimit  int64
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

func (o Options) withDefaults() Options {
	if o.Secret == "" {
		o.Secret = "dev-secret"
	}
	if o.TokenTTL <= 0 {
		o.TokenTTL = 24 * time.Hour
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 32768
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = (o.PongWait * 9) / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	return o
}

type Server struct {
	store    *Store
	opts     Options
	upgrader websocket.Upgrader
}

func NewServer(store *Store, opts Options) *Server {
	return &Server{
		store: store,
		opts:  opts.withDefaults(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Store() *Store { return s.store }

// Handler is Router behind CORS, for browser clients on another origin.
func (s *Server) Handler(ctx context.Context) http.Handler {
	return handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(s.opts.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(s.Router(ctx))
}

// Router builds the HTTP surface. ctx bounds the lifetime of websocket peers.
func (s *Server) Router(ctx context.Context) *gin.Engine {
	switch s.opts.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if s.opts.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(s.opts.Secret))
	r.Use(sessions.Sessions("MeetSyncSessions", store))

	if s.opts.StaticPath != "" {
		r.Static("/static", s.opts.StaticPath)
	}

	api := r.Group("/api")
	api.POST("/users", s.handleCreateUser)

	authed := api.Group("", s.IdentityMiddleware())
	authed.GET("/users/:id", s.handleGetUser)
	authed.GET("/meetings", s.handleListMeetings)
	authed.POST("/meetings", s.handleCreateMeeting)
	authed.GET("/meetings/room/:roomId", s.handleGetMeeting)
	authed.POST("/meetings/room/:roomId/join", s.handleJoinMeeting)
	authed.GET("/ws", func(c *gin.Context) { s.handleWS(ctx, c) })

	log.Info().Str("module", "devserver").Str("static", s.opts.StaticPath).Msg("router setup")
	return r
}

type createUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type createUserResponse struct {
	ID    domain.UserID `json:"id"`
	Token string        `json:"token"`
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	p := domain.Profile{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}
	if p.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile is empty"})
		return
	}
	id := domain.UserID(uuid.NewString())
	s.store.PutUser(id, p)
	tok, err := IssueToken(s.opts.Secret, id, p, s.opts.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token signing failed"})
		return
	}
	c.JSON(http.StatusCreated, createUserResponse{ID: id, Token: tok})
}

func (s *Server) handleGetUser(c *gin.Context) {
	p, ok := s.store.User(domain.UserID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleListMeetings(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.List())
}

type createMeetingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleCreateMeeting(c *gin.Context) {
	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid title"})
		return
	}
	room := s.store.CreateMeeting(identityOf(c).UserID, req.Title, req.Description)
	c.JSON(http.StatusCreated, room.Meeting())
}

func (s *Server) handleGetMeeting(c *gin.Context) {
	room, ok := s.store.Room(domain.RoomID(c.Param("roomId")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrRoomNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, room.Meeting())
}

func (s *Server) handleJoinMeeting(c *gin.Context) {
	room, ok := s.store.Room(domain.RoomID(c.Param("roomId")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrRoomNotFound.Error()})
		return
	}
	if err := room.Register(identityOf(c).UserID); err != nil {
		if errors.Is(err, ErrAlreadyJoined) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleWS(ctx context.Context, c *gin.Context) {
	id := identityOf(c)
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Str("module", "devserver").Err(err).Msg("ws upgrade failed")
		return
	}
	p := newPeer(ws, id, s.opts.SendBuffer)
	p.logger.Info().Bool("anonymous", id.Anonymous).Msg("peer connected")

	peerCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		s.readPump(peerCtx, p)
	}()
	go s.writePump(peerCtx, p)
}
