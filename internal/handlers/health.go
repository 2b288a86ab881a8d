package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Pinger checks connectivity of the backing durable store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger adapts redis.Client to Pinger.
type RedisPinger struct {
	client *redis.Client
}

// NewRedisPinger creates a Redis connectivity checker.
func NewRedisPinger(client *redis.Client) *RedisPinger {
	return &RedisPinger{client: client}
}

func (r *RedisPinger) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// HealthHandler reports service and storage health.
type HealthHandler struct {
	storage Pinger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(storage Pinger) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Body struct {
		Status  string `json:"status"`
		Storage string `json:"storage"`
	}
}

// Check reports whether the service and its durable store are reachable.
func (h *HealthHandler) Check(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
	resp := &HealthResponse{}
	resp.Body.Status = "ok"

	if err := h.storage.Ping(ctx); err != nil {
		resp.Body.Storage = "unhealthy"
		resp.Body.Status = "degraded"
	} else {
		resp.Body.Storage = "healthy"
	}

	return resp, nil
}
