// Package server is the local content API stub: it serves the posts kept in
// the stub database in the format the feed client expects.
package server

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"inkfeed/db"
	"inkfeed/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// PostStore is the read side of the stub database
type PostStore interface {
	GetPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	Count(ctx context.Context) (int, error)
}

type ServerConfig struct {
	// The store to read posts from
	Reader PostStore

	// Comma separated origins allowed to call the API
	AllowOrigins string

	// When set, every API request fails with this status
	FailStatus int
}

type errorResponse struct {
	Error string `json:"error"`
}

// Returns a fiber.App instance serving the content API stub
func Server(config *ServerConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(errorResponse{Error: err.Error()})
		},
	})

	// Middleware to track the latency and outcome of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		latency := time.Since(start)
		route := c.Route().Path
		requestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(c.Method(), route).Observe(latency.Seconds())

		log.WithFields(log.Fields{
			"method":     c.Method(),
			"route":      route,
			"status":     status,
			"request_id": c.Locals("requestid"),
			"latency":    latency,
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  orDefault(config.AllowOrigins, "*"),
		AllowMethods:  "GET,HEAD,OPTIONS",
		AllowHeaders:  "Accept,Content-Type,X-Request-Id",
		ExposeHeaders: "X-Request-Id",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		count, err := config.Reader.Count(c.UserContext())
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: "database unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "posts": count})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", func(c *fiber.Ctx) error {
		if config.FailStatus != 0 {
			return c.Status(config.FailStatus).JSON(errorResponse{Error: "Failure forced by configuration"})
		}
		return c.Next()
	})

	api.Get("/content", func(c *fiber.Ctx) error {
		posts, err := config.Reader.GetPosts(c.UserContext())
		if err != nil {
			log.WithFields(log.Fields{
				"error": err,
			}).Error("Error getting posts")
			return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "Error getting posts"})
		}
		return c.JSON(posts)
	})

	api.Get("/content/*", func(c *fiber.Ctx) error {
		id, err := url.PathUnescape(c.Params("*"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "Invalid post id"})
		}
		if id == "" {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Post not found"})
		}

		post, err := config.Reader.GetPost(c.UserContext(), id)
		if errors.Is(err, db.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Post not found"})
		}
		if err != nil {
			log.WithFields(log.Fields{
				"id":    id,
				"error": err,
			}).Error("Error getting post")
			return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "Error getting post"})
		}
		return c.JSON(post)
	})

	return app
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
