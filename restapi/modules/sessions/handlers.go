// Package sessions implements the REST API handlers for server-side issue browser views.
package sessions

import (
	"errors"

	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/restapi/respond"
	"github.com/ciaa/ciaa-dashboard/session"
	"github.com/gofiber/fiber/v2"
)

// SearchRequest is the body of POST /sessions/:id/search.
type SearchRequest struct {
	Term string `json:"term"`
	Type string `json:"type"`
}

// ToggleRequest is the body of the filter and component toggles.
type ToggleRequest struct {
	Category string `json:"category"`
	Value    string `json:"value"`
}

// HasCVERequest is the body of POST /sessions/:id/filters/has-cve.
type HasCVERequest struct {
	HasCVE bool `json:"has_cve"`
}

// PageRequest is the body of POST /sessions/:id/page.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PathRequest is the body of the component tree actions.
type PathRequest struct {
	Path string `json:"path"`
}

// ComponentSearchRequest is the body of POST /sessions/:id/components/search.
type ComponentSearchRequest struct {
	Term string `json:"term"`
}

// CreateSession handles POST /sessions.
func CreateSession(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := b.Open(c.UserContext())
		if err != nil {
			return respond.FromError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(snap)
	}
}

// GetSession handles GET /sessions/:id.
func GetSession(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := b.Get(c.Params("id"))
		if err != nil {
			return respond.FromError(c, err)
		}
		return c.JSON(snap)
	}
}

// DeleteSession handles DELETE /sessions/:id.
func DeleteSession(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := b.Close(c.Params("id")); err != nil {
			return respond.FromError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Search handles POST /sessions/:id/search.
func Search(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req SearchRequest
		if err := c.BodyParser(&req); err != nil {
			return respond.BadRequest(c, "Invalid request body")
		}
		searchType, err := filters.ParseSearchType(req.Type)
		if err != nil {
			return respond.BadRequest(c, err.Error())
		}
		return reply(c)(b.Search(c.UserContext(), c.Params("id"), req.Term, searchType))
	}
}

// ToggleFilter handles POST /sessions/:id/filters/toggle.
func ToggleFilter(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ToggleRequest
		if err := c.BodyParser(&req); err != nil {
			return respond.BadRequest(c, "Invalid request body")
		}
		category, err := filters.ParseCategory(req.Category)
		if err != nil {
			return respond.BadRequest(c, err.Error())
		}
		if req.Value == "" {
			return respond.BadRequest(c, "value is required")
		}
		if category == filters.CategoryComponents {
			return reply(c)(b.ToggleComponent(c.UserContext(), c.Params("id"), req.Value))
		}
		return reply(c)(b.ToggleFilter(c.UserContext(), c.Params("id"), category, req.Value))
	}
}

// ClearFilters handles POST /sessions/:id/filters/clear.
func ClearFilters(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return reply(c)(b.ClearFilters(c.UserContext(), c.Params("id")))
	}
}

// SetHasCVE handles POST /sessions/:id/filters/has-cve.
func SetHasCVE(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req HasCVERequest
		if err := c.BodyParser(&req); err != nil {
			return respond.BadRequest(c, "Invalid request body")
		}
		return reply(c)(b.SetHasCVE(c.UserContext(), c.Params("id"), req.HasCVE))
	}
}

// SetPage handles POST /sessions/:id/page.
func SetPage(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req PageRequest
		if err := c.BodyParser(&req); err != nil {
			return respond.BadRequest(c, "Invalid request body")
		}
		if req.Page < 1 {
			return respond.BadRequest(c, "page must be at least 1")
		}
		return reply(c)(b.SetPage(c.UserContext(), c.Params("id"), req.Page, req.Limit))
	}
}

// ToggleComponent handles POST /sessions/:id/components/toggle.
func ToggleComponent(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req PathRequest
		if err := c.BodyParser(&req); err != nil || req.Path == "" {
			return respond.BadRequest(c, "path is required")
		}
		return reply(c)(b.ToggleComponent(c.UserContext(), c.Params("id"), req.Path))
	}
}

// ToggleExpansion handles POST /sessions/:id/components/expand.
func ToggleExpansion(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req PathRequest
		if err := c.BodyParser(&req); err != nil || req.Path == "" {
			return respond.BadRequest(c, "path is required")
		}
		return rows(c)(b.ToggleExpansion(c.Params("id"), req.Path))
	}
}

// SearchComponents handles POST /sessions/:id/components/search.
func SearchComponents(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ComponentSearchRequest
		if err := c.BodyParser(&req); err != nil {
			return respond.BadRequest(c, "Invalid request body")
		}
		return rows(c)(b.SetComponentSearch(c.Params("id"), req.Term))
	}
}

// GetComponents handles GET /sessions/:id/components.
func GetComponents(b *session.Browser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return rows(c)(b.Components(c.Params("id")))
	}
}

func reply(c *fiber.Ctx) func(session.Snapshot, error) error {
	return func(snap session.Snapshot, err error) error {
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(snap)
	}
}

func rows(c *fiber.Ctx) func([]filters.Row, error) error {
	return func(rows []filters.Row, err error) error {
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rows)
	}
}

func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrUnknownComponent):
		return respond.BadRequest(c, err.Error())
	case errors.Is(err, session.ErrNotFound):
		return respond.FromError(c, err)
	default:
		return respond.BadRequest(c, err.Error())
	}
}
