// Package api builds the Fiber application serving the REST and GraphQL endpoints.
package api

import (
	"fmt"
	"time"

	"github.com/ciaa/ciaa-dashboard/graphql"
	"github.com/ciaa/ciaa-dashboard/internal/config"
	"github.com/ciaa/ciaa-dashboard/restapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
)

// NewFiberApp creates and configures a Fiber app with REST and GraphQL routes
func NewFiberApp(cfg config.Config, deps restapi.Deps, gqlDeps graphql.Deps) (*fiber.App, error) {
	schema, err := graphql.CreateSchema(gqlDeps)
	if err != nil {
		return nil, fmt.Errorf("failed to create GraphQL schema: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "ciaa-dashboard API v1.0",
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Requested-With",
		AllowMethods: "GET, POST, HEAD, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("graphql_op", "-")
		return c.Next()
	})
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} - ${latency} ${method} ${path} ${locals:graphql_op}\n",
	}))

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	restapi.SetupRoutes(app, deps, schema)

	return app, nil
}
