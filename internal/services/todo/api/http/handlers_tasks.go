package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/louisbranch/taskboard/internal/platform/httpx"
	"github.com/louisbranch/taskboard/internal/platform/requestctx"
	"github.com/louisbranch/taskboard/internal/services/todo/task"
)

func (h *handlers) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	created, err := h.tasks.CreateTask(r.Context(), requestctx.UserIDFromContext(r.Context()), req.Title)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toTaskResponse(created))
}

func (h *handlers) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListTasks(r.Context(), requestctx.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (h *handlers) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	updated, err := h.tasks.UpdateTask(r.Context(), requestctx.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), task.Patch{
		Title:     req.Title,
		Completed: req.Completed,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toTaskResponse(updated))
}

func (h *handlers) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.DeleteTask(r.Context(), requestctx.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteMessage(w, http.StatusOK, "Task deleted successfully")
}
