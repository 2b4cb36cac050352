// Package proxy serves the /api/chat endpoint that the proxy backend talks
// to, so clients never hold the Gemini key.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"rafeyshell/internal/llm"
	"rafeyshell/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// ChatPath is the chat endpoint.
	ChatPath = "/api/chat"
	// DefaultAddr is the listen address used by `rafey serve`.
	DefaultAddr = ":8787"

	shutdownTimeout = 10 * time.Second
)

// Config configures the server.
type Config struct {
	Addr  string
	Token string // optional shared bearer token
}

// Server wraps the fiber app. A nil generator makes /api/chat answer 500.
type Server struct {
	app   *fiber.App
	gen   llm.Client
	addr  string
	token string
}

type chatRequest struct {
	Prompt  string        `json:"prompt"`
	History []llm.Message `json:"history"`
}

// New builds the app and its routes.
func New(gen llm.Client, cfg Config) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{gen: gen, addr: addr, token: cfg.Token}

	app := fiber.New(fiber.Config{
		AppName:               "rafey-shell proxy",
		DisableStartupMessage: true,
		BodyLimit:             1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(requestLogger)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.All(ChatPath, s.handleChat)

	s.app = app
	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Proxy("Listening on %s", s.addr)
		return s.app.Listen(s.addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Proxy("Shutting down")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	setCORS(c)

	switch c.Method() {
	case fiber.MethodOptions:
		c.Status(fiber.StatusOK)
		return nil
	case fiber.MethodPost:
	default:
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Method not allowed"})
	}

	if s.token != "" && c.Get(fiber.HeaderAuthorization) != "Bearer "+s.token {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid proxy token"})
	}

	var req chatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Prompt is required"})
	}

	if s.gen == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "API key not configured on server"})
	}

	text, err := s.gen.Query(c.UserContext(), llm.Payload{Prompt: FlattenHistory(req.History, req.Prompt)})
	if err != nil {
		logging.Get(logging.CategoryProxy).Error("Generation failed (request %v): %v", c.Locals("requestid"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to generate response",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"response": text})
}

// FlattenHistory renders history as "role: content" lines followed by
// "user: <prompt>". Without history the prompt is returned unchanged.
func FlattenHistory(history []llm.Message, prompt string) string {
	if len(history) == 0 {
		return prompt
	}
	lines := make([]string, 0, len(history)+1)
	for _, m := range history {
		lines = append(lines, m.Role+": "+m.Content)
	}
	lines = append(lines, "user: "+prompt)
	return strings.Join(lines, "\n")
}

func setCORS(c *fiber.Ctx) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, Authorization")
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	logging.Get(logging.CategoryProxy).Info("%s %s -> %d in %v (request %v)",
		c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start), c.Locals("requestid"))
	return err
}
