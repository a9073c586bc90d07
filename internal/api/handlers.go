package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hammamikhairi/cooksync/internal/auth"
	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/engine"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// Handler holds the dependencies of every route.
type Handler struct {
	kitchen *engine.Engine
	auth    *auth.Service
	log     *logger.Logger
}

// owner is the ID of the authenticated user. The auth middleware runs
// before every handler that calls it.
func owner(r *http.Request) string {
	if u, ok := auth.UserFrom(r.Context()); ok {
		return u.ID
	}
	return auth.LocalUserID
}

func (h *Handler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Smart Cooking Sync API"})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decode(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Credential == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Detail: "invalid input: credential is required",
			Fields: map[string]string{"credential": "is required"},
		})
		return
	}

	token, user, err := h.auth.SignIn(r.Context(), req.Credential)
	if err != nil {
		writeFailure(w, h.log, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, SignInResponse{AccessToken: token, TokenType: "bearer", User: user})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFrom(r.Context())
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) listDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.kitchen.ListDishes(r.Context(), owner(r))
	if err != nil {
		writeFailure(w, h.log, err, "")
		return
	}
	if dishes == nil {
		dishes = []*domain.Dish{}
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (h *Handler) createDish(w http.ResponseWriter, r *http.Request) {
	var in engine.DishInput
	if err := decode(r, &in, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	dish, err := h.kitchen.AddDish(r.Context(), owner(r), in)
	if err != nil {
		writeFailure(w, h.log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) clearDishes(w http.ResponseWriter, r *http.Request) {
	n, err := h.kitchen.ClearDishes(r.Context(), owner(r))
	if err != nil {
		writeFailure(w, h.log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, DeletedResponse{
		Message:      fmt.Sprintf("Deleted %d dishes", n),
		DeletedCount: n,
	})
}

func (h *Handler) updateDishTime(w http.ResponseWriter, r *http.Request) {
	minutes, ok := queryMinutes(w, r, "cookingTime")
	if !ok {
		return
	}
	dish, err := h.kitchen.UpdateDishTime(r.Context(), owner(r), chi.URLParam(r, "id"), minutes)
	if err != nil {
		writeFailure(w, h.log, err, "Dish not found")
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) deleteDish(w http.ResponseWriter, r *http.Request) {
	if err := h.kitchen.RemoveDish(r.Context(), owner(r), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, h.log, err, "Dish not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Dish deleted successfully"})
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.kitchen.ListTasks(r.Context(), owner(r))
	if err != nil {
		writeFailure(w, h.log, err, "")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var in engine.TaskInput
	if err := decode(r, &in, false); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	task, err := h.kitchen.AddTask(r.Context(), owner(r), in)
	if err != nil {
		writeFailure(w, h.log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) clearTasks(w http.ResponseWriter, r *http.Request) {
	n, err := h.kitchen.ClearTasks(r.Context(), owner(r))
	if err != nil {
		writeFailure(w, h.log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, DeletedResponse{
		Message:      fmt.Sprintf("Deleted %d tasks", n),
		DeletedCount: n,
	})
}

func (h *Handler) updateTaskTime(w http.ResponseWriter, r *http.Request) {
	minutes, ok := queryMinutes(w, r, "minutes")
	if !ok {
		return
	}
	task, err := h.kitchen.UpdateTaskTime(r.Context(), owner(r), chi.URLParam(r, "id"), minutes)
	if err != nil {
		writeFailure(w, h.log, err, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.kitchen.RemoveTask(r.Context(), owner(r), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, h.log, err, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

func (h *Handler) calculatePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := decode(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := h.kitchen.CalculatePlan(r.Context(), owner(r), req.Appliance())
	if err != nil {
		writeFailure(w, h.log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, NewPlanResponse(p))
}

// queryMinutes reads a whole-minute query parameter, writing a 400 when it
// is missing or not a number.
func queryMinutes(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Detail: fmt.Sprintf("invalid input: %s must be a whole number of minutes", name),
			Fields: map[string]string{name: "must be a whole number"},
		})
		return 0, false
	}
	return n, true
}
