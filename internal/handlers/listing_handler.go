package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/registry"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

var (
	errNotFound     = dto.ErrorResponse{Message: "Listing not found"}
	errUnauthorized = dto.ErrorResponse{Message: "Unauthorized"}
)

type ListingHandler struct {
	store    services.ListingStore
	registry *registry.Registry
}

func NewListingHandler(store services.ListingStore, reg *registry.Registry) *ListingHandler {
	return &ListingHandler{store: store, registry: reg}
}

// For returns the handler bound to op.
func (h *ListingHandler) For(op registry.Op) fiber.Handler {
	switch op {
	case registry.OpList:
		return h.List
	case registry.OpListOwned:
		return h.ListOwned
	case registry.OpGet:
		return h.Get
	case registry.OpCreate:
		return h.Create
	case registry.OpUpdate:
		return h.Update
	case registry.OpDelete:
		return h.Delete
	}
	panic("handlers: no listing handler for op " + string(op))
}

func (h *ListingHandler) List(c *fiber.Ctx) error {
	filter, fe := registry.ParseFilter(queryParam(c))
	if fe != nil {
		return h.reply(c, registry.OpList, fiber.StatusBadRequest, dto.ErrorResponse{Message: "Invalid filters", Field: fe.Field})
	}

	listings, err := h.store.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return h.reply(c, registry.OpList, fiber.StatusOK, listings)
}

// ListOwned lists the caller's own listings. The owner filter is always the
// token subject.
func (h *ListingHandler) ListOwned(c *fiber.Ctx) error {
	sub, err := middleware.GetSubject(c)
	if err != nil {
		return h.reply(c, registry.OpListOwned, fiber.StatusUnauthorized, errUnauthorized)
	}
	filter, fe := registry.ParseFilter(queryParam(c))
	if fe != nil {
		return h.reply(c, registry.OpListOwned, fiber.StatusBadRequest, dto.ErrorResponse{Message: "Invalid filters", Field: fe.Field})
	}
	filter.OwnerID = &sub

	listings, err := h.store.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return h.reply(c, registry.OpListOwned, fiber.StatusOK, listings)
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	id, ok := listingID(c)
	if !ok {
		return h.reply(c, registry.OpGet, fiber.StatusNotFound, errNotFound)
	}

	listing, err := h.store.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			return h.reply(c, registry.OpGet, fiber.StatusNotFound, errNotFound)
		}
		return err
	}
	return h.reply(c, registry.OpGet, fiber.StatusOK, listing)
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	sub, err := middleware.GetSubject(c)
	if err != nil {
		return h.reply(c, registry.OpCreate, fiber.StatusUnauthorized, errUnauthorized)
	}

	var req dto.CreateListingRequest
	if fe := parseBody(c, &req); fe != nil {
		return h.reply(c, registry.OpCreate, fiber.StatusBadRequest, fe)
	}

	listing, err := h.store.Create(c.UserContext(), req, sub)
	if err != nil {
		return err
	}
	slog.Info("listing created", "listing_id", listing.ID, "user_id", sub)
	return h.reply(c, registry.OpCreate, fiber.StatusCreated, listing)
}

// Update checks existence, then ownership, then the body.
func (h *ListingHandler) Update(c *fiber.Ctx) error {
	sub, err := middleware.GetSubject(c)
	if err != nil {
		return h.reply(c, registry.OpUpdate, fiber.StatusUnauthorized, errUnauthorized)
	}
	id, status, err := h.authorize(c, sub)
	if err != nil {
		return err
	}
	if status != 0 {
		return h.reply(c, registry.OpUpdate, status, statusBody(status))
	}

	var req dto.UpdateListingRequest
	if fe := parseBody(c, &req); fe != nil {
		return h.reply(c, registry.OpUpdate, fiber.StatusBadRequest, fe)
	}

	listing, err := h.store.Update(c.UserContext(), id, req)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			return h.reply(c, registry.OpUpdate, fiber.StatusNotFound, errNotFound)
		}
		return err
	}
	slog.Info("listing updated", "listing_id", id, "user_id", sub)
	return h.reply(c, registry.OpUpdate, fiber.StatusOK, listing)
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	sub, err := middleware.GetSubject(c)
	if err != nil {
		return h.reply(c, registry.OpDelete, fiber.StatusUnauthorized, errUnauthorized)
	}
	id, status, err := h.authorize(c, sub)
	if err != nil {
		return err
	}
	if status != 0 {
		return h.reply(c, registry.OpDelete, status, statusBody(status))
	}

	if err := h.store.Delete(c.UserContext(), id); err != nil {
		return err
	}
	slog.Info("listing deleted", "listing_id", id, "user_id", sub)
	return h.reply(c, registry.OpDelete, fiber.StatusNoContent, nil)
}

// authorize loads the listing named by :id and compares its owner with sub.
// A non-zero status means the request must stop with that status.
func (h *ListingHandler) authorize(c *fiber.Ctx, sub string) (int64, int, error) {
	id, ok := listingID(c)
	if !ok {
		return 0, fiber.StatusNotFound, nil
	}

	listing, err := h.store.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			return 0, fiber.StatusNotFound, nil
		}
		return 0, 0, err
	}
	if listing.OwnerID != sub {
		slog.Warn("listing ownership mismatch", "listing_id", id, "user_id", sub)
		return 0, fiber.StatusUnauthorized, nil
	}
	return id, 0, nil
}

// reply writes a response the registry declares for op. Undeclared statuses
// are logged so contract drift shows up in the error log.
func (h *ListingHandler) reply(c *fiber.Ctx, op registry.Op, status int, body interface{}) error {
	if _, ok := h.registry.Route(op).Expects(status); !ok {
		slog.Error("undeclared response status", "op", string(op), "status", status, "path", c.Path())
	}
	if status == fiber.StatusNoContent {
		return c.SendStatus(status)
	}
	return c.Status(status).JSON(body)
}

func listingID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func statusBody(status int) dto.ErrorResponse {
	if status == fiber.StatusNotFound {
		return errNotFound
	}
	return errUnauthorized
}

// parseBody decodes and validates a JSON body, returning the first problem
// as a field error body.
func parseBody(c *fiber.Ctx, dst interface{}) *dto.ErrorResponse {
	if err := json.Unmarshal(coercePrice(c.Body()), dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &dto.ErrorResponse{Message: typeErr.Field + " has an invalid type", Field: typeErr.Field}
		}
		return &dto.ErrorResponse{Message: "Invalid request body"}
	}
	if fe := validation.Struct(dst); fe != nil {
		return fieldErrorBody(fe)
	}
	return nil
}

// coercePrice rewrites a string price holding an integer, such as "1200",
// as a JSON number. Any other body is returned unchanged.
func coercePrice(body []byte) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}
	raw, ok := fields["price"]
	if !ok {
		return body
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return body
	}
	price, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return body
	}
	fields["price"] = json.RawMessage(strconv.Itoa(price))
	out, err := json.Marshal(fields)
	if err != nil {
		return body
	}
	return out
}

func fieldErrorBody(fe *validation.FieldError) *dto.ErrorResponse {
	return &dto.ErrorResponse{Message: fe.Message, Field: fe.Field}
}

func queryParam(c *fiber.Ctx) func(string) string {
	return func(key string) string { return c.Query(key) }
}
