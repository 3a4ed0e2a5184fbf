package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"baby-care-log/internal/domain/profiles"
	"baby-care-log/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, profilesSvc *profiles.Service) {
	r.Route("/api/runCommand", func(cr chi.Router) {
		cr.Post("/", runCommandHandler(svc, profilesSvc))
		cr.Get("/{action}", runQueryHandler(svc, profilesSvc))
	})

	r.Route("/profiles/{profileID}/events", func(er chi.Router) {
		er.Get("/", listEventsHandler(svc, profilesSvc))
		er.Get("/{eventID}", getEventHandler(svc, profilesSvc))
	})
}

// removeResponse confirma el borrado de un evento.
type removeResponse struct {
	ID string `json:"id"`
}

type prescriptionsResponse struct {
	Prescriptions []string `json:"prescriptions"`
}

// runCommandHandler godoc
// @Summary Ejecutar un comando sobre eventos
// @Description Endpoint único de escritura. El payload es el mapa plano de campos del evento más `__action` (CREATE_<KIND>_EVENT, UPDATE_<KIND>_EVENT, REMOVE_<KIND>_EVENT). En UPDATE, un campo ausente significa "no tocar". Solo el dueño del perfil puede escribir.
// @Tags commands
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param payload body object true "Campos del evento + __action"
// @Success 200 {object} object "evento actualizado o {id} en REMOVE"
// @Success 201 {object} object "evento creado"
// @Failure 400 {string} string "invalid json / unknown action / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /api/runCommand [post]
func runCommandHandler(svc *Service, profilesSvc *profiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var payload Fields
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		op, kind, ok := ParseAction(Action(stringField(payload, ActionKey)))
		if !ok {
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}

		if op == OpCreate {
			profileID := stringField(payload, FieldProfileID)
			if _, err := profilesSvc.Authorize(r.Context(), profileID, userID); err != nil {
				writeError(w, err)
				return
			}
			e, err := svc.Create(r.Context(), profileID, kind, payload)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, e)
			return
		}

		// Update / Remove: primero permisos sobre el perfil dueño del evento.
		current, err := svc.GetByID(r.Context(), stringField(payload, FieldID))
		if err != nil {
			writeError(w, err)
			return
		}
		if _, err := profilesSvc.Authorize(r.Context(), current.ProfileID, userID); err != nil {
			writeError(w, err)
			return
		}

		switch op {
		case OpUpdate:
			e, err := svc.Update(r.Context(), current.ID, kind, payload)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, e)
		case OpRemove:
			e, err := svc.Remove(r.Context(), current.ID, kind)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, removeResponse{ID: e.ID})
		}
	}
}

// runQueryHandler godoc
// @Summary Ejecutar una consulta de solo lectura
// @Description Por ahora solo FETCH_TOP_PRESCRIPTIONS: recetas más usadas del perfil que contienen searchText.
// @Tags commands
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param action path string true "Acción de consulta" Enums(FETCH_TOP_PRESCRIPTIONS)
// @Param profileId query string true "ID del perfil"
// @Param searchText query string false "Texto tipeado"
// @Success 200 {object} prescriptionsResponse
// @Failure 400 {string} string "unknown action"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profile not found"
// @Router /api/runCommand/{action} [get]
func runQueryHandler(svc *Service, profilesSvc *profiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if Action(chi.URLParam(r, "action")) != ActionFetchTopPrescriptions {
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}

		profileID := r.URL.Query().Get("profileId")
		if _, err := profilesSvc.Authorize(r.Context(), profileID, userID); err != nil {
			writeError(w, err)
			return
		}

		out, err := svc.TopPrescriptions(r.Context(), profileID, r.URL.Query().Get("searchText"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, prescriptionsResponse{Prescriptions: out})
	}
}

// listEventsHandler godoc
// @Summary Listar eventos de un perfil
// @Description Lista canónica de eventos, más reciente primero. Permite filtrar por kinds, rango de fechas y texto.
// @Tags events
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param profileID path string true "ID del perfil"
// @Param limit query int false "Máximo de eventos a devolver (1-500). Por defecto 100"
// @Param kinds query string false "Lista CSV de kinds (ej: BOTTLE_FEED,NURSING)"
// @Param from query string false "time mínimo (RFC3339)"
// @Param to query string false "time máximo (RFC3339)"
// @Param q query string false "Texto libre en comentario/título/receta/destino"
// @Success 200 {array} object
// @Failure 400 {string} string "Parámetros de filtro inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "profile not found"
// @Router /profiles/{profileID}/events [get]
func listEventsHandler(svc *Service, profilesSvc *profiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		profileID := chi.URLParam(r, "profileID")
		if _, err := profilesSvc.Authorize(r.Context(), profileID, userID); err != nil {
			writeError(w, err)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.ListByProfile(r.Context(), profileID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if items == nil {
			items = []Event{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// getEventHandler godoc
// @Summary Obtener un evento
// @Tags events
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token"
// @Param profileID path string true "ID del perfil"
// @Param eventID path string true "ID del evento"
// @Success 200 {object} object
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /profiles/{profileID}/events/{eventID} [get]
func getEventHandler(svc *Service, profilesSvc *profiles.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		profileID := chi.URLParam(r, "profileID")
		if _, err := profilesSvc.Authorize(r.Context(), profileID, userID); err != nil {
			writeError(w, err)
			return
		}

		e, err := svc.GetByID(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			writeError(w, err)
			return
		}
		// Un evento de otro perfil no existe para esta ruta.
		if e.ProfileID != profileID {
			writeError(w, ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()

	filter := ListFilter{Limit: 100}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			filter.Limit = n
		}
	}

	// kinds=BOTTLE_FEED,NURSING
	if v := strings.TrimSpace(q.Get("kinds")); v != "" {
		for _, p := range strings.Split(v, ",") {
			k := Kind(strings.TrimSpace(p))
			if k == "" {
				continue
			}
			if !k.Known() {
				return ListFilter{}, errors.New("unknown kind: " + string(k))
			}
			filter.Kinds = append(filter.Kinds, k)
		}
	}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be RFC3339")
		}
		filter.To = &t
	}

	filter.Query = strings.TrimSpace(q.Get("q"))
	return filter, nil
}

func stringField(f Fields, name string) string {
	s, _ := f[name].(string)
	return strings.TrimSpace(s)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownKind), errors.Is(err, ErrKindMismatch),
		errors.Is(err, profiles.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, profiles.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "event not found", http.StatusNotFound)
	case errors.Is(err, profiles.ErrNotFound):
		http.Error(w, "profile not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
