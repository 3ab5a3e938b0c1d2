package controllers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"storefront/filter"
	"storefront/middleware"
)

// GET /products  (filter + paginate, newest first)
func (h *Handler) GetProducts(c *fiber.Ctx) error {
	criteria, err := parseCriteria(c)
	if err != nil {
		middleware.RecordProductOperation("list", false)
		return validationFailed(c, err)
	}

	resp, hit, err := h.Catalog.List(c.UserContext(), criteria)
	middleware.RecordProductOperation("list", err == nil)
	if err != nil {
		return h.internalError(c, "failed to list products", err)
	}

	middleware.RecordCacheLookup(hit)
	if hit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	return c.JSON(resp)
}

// GET /products/:id
func (h *Handler) GetProductByID(c *fiber.Ctx) error {
	p, ok, err := h.Catalog.Product(c.UserContext(), c.Params("id"))
	middleware.RecordProductOperation("get", err == nil)
	if err != nil {
		return h.internalError(c, "failed to load product", err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return c.JSON(p)
}

// GET /products/:id/recommendations
func (h *Handler) GetRecommendations(c *fiber.Ctx) error {
	products, err := h.Catalog.Recommendations(c.UserContext(), c.Params("id"))
	middleware.RecordProductOperation("recommend", err == nil)
	if err != nil {
		return h.internalError(c, "failed to load recommendations", err)
	}
	return c.JSON(products)
}

// GET /products/facets  (counts under the same filters as the listing)
func (h *Handler) GetProductFacets(c *fiber.Ctx) error {
	criteria, err := parseCriteria(c)
	if err != nil {
		return validationFailed(c, err)
	}

	facets, err := h.Catalog.Facets(c.UserContext(), criteria)
	middleware.RecordProductOperation("facets", err == nil)
	if err != nil {
		return h.internalError(c, "failed to load facets", err)
	}
	return c.JSON(facets)
}

func parseCriteria(c *fiber.Ctx) (filter.Criteria, error) {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return filter.Criteria{}, err
	}
	return filter.Parse(values)
}
