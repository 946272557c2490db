package demo

import (
	"context"
	"encoding/csv"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kolah/relay/api"
	"github.com/kolah/relay/httperr"
)

type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Items is an in-memory item store exposed over HTTP.
type Items struct {
	api.Table

	mu    sync.RWMutex
	items map[string]Item
	order []string
	now   func() time.Time
}

func NewItems() *Items {
	c := &Items{
		items: make(map[string]Item),
		now:   time.Now,
	}
	c.Get("/items", api.AuthOptional, c.list, api.Description("List items"))
	c.Get("/items/{id}", api.AuthOptional, c.get, api.Description("Get an item"))
	c.Post("/items", api.AuthRequired, c.create, api.Description("Create an item"))
	c.Delete("/items/{id}", api.AuthFunc(IsService), c.remove,
		api.Description("Delete an item"), api.AuthStrategies(APIKeyStrategy))
	c.Get("/export/items", api.AuthOptional, c.export,
		api.Description("Export items as CSV"), api.ContentType("text/csv"))
	return c
}

func (c *Items) list(context.Context, *api.Request) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out, nil
}

func (c *Items) get(_ context.Context, req *api.Request) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[req.Params["id"]]
	if !ok {
		return nil, httperr.NotFound("Item not found")
	}
	return item, nil
}

func (c *Items) create(_ context.Context, req *api.Request) (any, error) {
	body, _ := req.Body.(map[string]any)
	name, _ := body["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, httperr.BadRequest("name is required")
	}

	item := Item{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: c.now().UTC(),
	}
	if id, ok := req.Auth.(Identity); ok {
		item.CreatedBy = id.Subject
	}

	c.mu.Lock()
	c.items[item.ID] = item
	c.order = append(c.order, item.ID)
	c.mu.Unlock()

	return api.Respond(item).Code(http.StatusCreated).Header("Location", "/items/"+item.ID), nil
}

func (c *Items) remove(_ context.Context, req *api.Request) (any, error) {
	id := req.Params["id"]

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return nil, httperr.NotFound("Item not found")
	}
	delete(c.items, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
	return nil, nil
}

func (c *Items) export(context.Context, *api.Request) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "name", "createdBy", "createdAt"})
	for _, id := range c.order {
		item := c.items[id]
		_ = w.Write([]string{item.ID, item.Name, item.CreatedBy, item.CreatedAt.Format(time.RFC3339)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.String(), nil
}
