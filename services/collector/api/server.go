package api

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/iulianpascalau/snapshot-agent/services/collector/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	tokenLifeSpan        = 24 * time.Hour
	defaultSnapshotLimit = 100
	maxSnapshotLimit     = 1000
)

var log = logger.GetOrCreate("api")

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	storage        Storage
	serviceKey     string
	username       string
	password       string
	listenAddr     string
	jwtSecret      []byte
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
}

// SymbolsPayload is the body of the symbols endpoints
type SymbolsPayload struct {
	Symbols []string `json:"symbols"`
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ServiceKeyApi  string
	AuthUsername   string
	AuthPassword   string
	ListenAddress  string
	Storage        Storage
	GeneralHandler func(http.Handler) http.Handler
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Storage) {
		return nil, errNilStorage
	}
	if args.GeneralHandler == nil {
		return nil, errNilHTTPHandler
	}

	// Derive JWT secret from ServiceApiKey + random salt
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	h := hmac.New(sha256.New, []byte(args.ServiceKeyApi))
	h.Write(salt)
	jwtSecret := h.Sum(nil)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		storage:        args.Storage,
		serviceKey:     args.ServiceKeyApi,
		username:       args.AuthUsername,
		password:       args.AuthPassword,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
		jwtSecret:      jwtSecret,
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.Group("/api")

	// Agent endpoints
	api.POST("/snapshots", s.authAPIKey(), s.handleSnapshots)
	api.GET("/symbols", s.authAPIKey(), s.handleGetSymbols)

	// Frontend authentication
	api.POST("/auth/login", s.handleLogin)

	// Protected frontend endpoints
	protected := api.Group("/")
	protected.Use(s.authJWT())
	{
		protected.GET("/machines", s.handleGetMachines)
		protected.GET("/machines/:guid/devices/:device/snapshots", s.handleGetSnapshots)
		protected.PUT("/symbols", s.handleSetSymbols)
		protected.DELETE("/symbols/:symbol", s.handleDeleteSymbol)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "api route not found"})
	})
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()
	return s.storage.Close()
}

// --- Middlewares ---

func (s *server) authAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Api-Key")
		if key != s.serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *server) authJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, s.signingKey)
		if err != nil || !token.Valid {
			log.Debug("rejected token", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (s *server) signingKey(token *jwt.Token) (interface{}, error) {
	_, isHMAC := token.Method.(*jwt.SigningMethodHMAC)
	if !isHMAC {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}

	return s.jwtSecret, nil
}

// --- Handlers ---

func (s *server) handleSnapshots(c *gin.Context) {
	var payload common.SnapshotsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	err := validatePayload(payload)
	if err != nil {
		log.Debug("rejected snapshots", "sender", c.Request.RemoteAddr, "guid", payload.GUID, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	numStored, err := s.storage.SaveSnapshots(c.Request.Context(), payload, time.Now().UnixMilli())
	if err != nil {
		log.Warn("failed to save snapshots", "guid", payload.GUID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Debug("received snapshots", "sender", c.Request.RemoteAddr, "guid", payload.GUID,
		"name", payload.Name, "num devices", len(payload.Devices), "stored", numStored)

	c.JSON(http.StatusOK, gin.H{"ok": true, "stored": numStored})
}

func (s *server) handleGetSymbols(c *gin.Context) {
	symbols, err := s.storage.GetSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SymbolsPayload{Symbols: symbols})
}

func (s *server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if req.Username != s.username || req.Password != s.password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	claims := jwt.RegisteredClaims{
		Subject:   req.Username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifeSpan)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *server) handleGetMachines(c *gin.Context) {
	machines, err := s.storage.GetMachines(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"machines": machines})
}

func (s *server) handleGetSnapshots(c *gin.Context) {
	limit := defaultSnapshotLimit
	limitStr := c.Query("limit")
	if len(limitStr) > 0 {
		value, err := strconv.Atoi(limitStr)
		if err != nil || value <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = value
	}
	if limit > maxSnapshotLimit {
		limit = maxSnapshotLimit
	}

	hist, err := s.storage.GetSnapshots(c.Request.Context(), c.Param("guid"), c.Param("device"), limit)
	if errors.Is(err, common.ErrMachineNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, hist)
}

func (s *server) handleSetSymbols(c *gin.Context) {
	var payload SymbolsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	err := s.storage.SetSymbols(c.Request.Context(), payload.Symbols)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info("tracked symbols changed", "symbols", strings.Join(payload.Symbols, ","))

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleDeleteSymbol(c *gin.Context) {
	symbol := c.Param("symbol")
	err := s.storage.DeleteSymbol(c.Request.Context(), symbol)
	if errors.Is(err, common.ErrSymbolNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info("tracked symbol removed", "symbol", symbol)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
