package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/service"
)

const sessionLocal = "session"

// Register mounts the JSON API under /api/v1.
func Register(app *fiber.App, svcs *service.Services) {
	g := app.Group("/api/v1")

	g.Get("/health", func(c *fiber.Ctx) error {
		if err := svcs.Repos.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	g.Get("/catalog", func(c *fiber.Ctx) error {
		return c.JSON(pricing.DefaultCatalog())
	})

	g.Post("/calculator/estimate", func(c *fiber.Ctx) error {
		var p pricing.Params
		if err := c.BodyParser(&p); err != nil {
			return badBody(c)
		}
		if err := p.Validate(); err != nil {
			return respondError(c, err)
		}
		res, err := pricing.Estimate(p)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"params": p, "result": res, "payback": res.Payback()})
	})
	g.Post("/quotations/preview", func(c *fiber.Ctx) error {
		var in pricing.QuoteInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		b, err := pricing.QuoteCost(in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(b)
	})
	g.Post("/quote-requests", func(c *fiber.Ctx) error {
		var r domain.QuoteRequest
		if err := c.BodyParser(&r); err != nil {
			return badBody(c)
		}
		r.ID, r.Source = "", domain.LeadSourceWeb
		lead, err := svcs.Leads.Submit(c.UserContext(), r)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(lead)
	})

	auth := g.Group("/auth")
	auth.Post("/signup", func(c *fiber.Ctx) error {
		var in service.SignUpInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		p, err := svcs.Auth.SignUp(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	})
	auth.Post("/signin", func(c *fiber.Ctx) error {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		sess, err := svcs.Auth.SignIn(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sess)
	})
	auth.Post("/signout", requireSession(svcs.Auth), func(c *fiber.Ctx) error {
		if err := svcs.Auth.SignOut(c.UserContext(), session(c).Token); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	partner := g.Group("/partner", requireSession(svcs.Auth))
	partner.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(session(c).Partner)
	})
	partner.Get("/quotations", func(c *fiber.Ctx) error {
		items, err := svcs.Quotations.List(c.UserContext(), session(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	})
	partner.Post("/quotations", func(c *fiber.Ctx) error {
		var in service.QuotationInput
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		q, err := svcs.Quotations.Submit(c.UserContext(), session(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(q)
	})
	partner.Patch("/quotations/:id/status", func(c *fiber.Ctx) error {
		var in struct {
			Status domain.QuotationStatus `json:"status"`
		}
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		q, err := svcs.Quotations.UpdateStatus(c.UserContext(), session(c), c.Params("id"), in.Status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(q)
	})
	partner.Get("/quotations/:id/document", func(c *fiber.Ctx) error {
		url, err := svcs.Quotations.Document(c.UserContext(), session(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	})
	partner.Get("/summary", func(c *fiber.Ctx) error {
		sum, err := svcs.Summary.ForPartner(c.UserContext(), session(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sum)
	})
}

// requireSession resolves the bearer token and stores the session in Locals.
func requireSession(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return respondError(c, service.ErrUnauthenticated)
		}
		sess, err := auth.Resolve(c.UserContext(), token)
		if err != nil {
			return respondError(c, err)
		}
		c.Locals(sessionLocal, sess)
		return c.Next()
	}
}

func session(c *fiber.Ctx) service.Session {
	sess, _ := c.Locals(sessionLocal).(service.Session)
	return sess
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
