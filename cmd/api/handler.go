package api

import (
	"email-sorter-backend/internal/queue"
	"email-sorter-backend/internal/worker"

	"github.com/gin-gonic/gin"
)

// Handler exposes the worker's small operational surface: liveness and a
// status snapshot.
type Handler struct {
	queue     *queue.Queue
	scheduler *worker.Scheduler
	engine    *gin.Engine
}

func NewHandler(q *queue.Queue, scheduler *worker.Scheduler) *Handler {
	h := &Handler{
		queue:     q,
		scheduler: scheduler,
		engine:    gin.Default(),
	}
	SetupRoutes(h.engine, h)
	return h
}

func (h *Handler) Start(addr string) error {
	return h.engine.Run(addr)
}
