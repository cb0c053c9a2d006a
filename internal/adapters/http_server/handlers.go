// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Mr-fuaaaadh/hostelmate/internal/app"
	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	O *app.Orchestrator
}

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	// Public read surface.
	s.mux.Get("/v1/hostels", h.listHostels)
	s.mux.Get("/v1/hostels/{id}", h.getHostel)
	s.mux.Get("/v1/homes", h.listHomes)
	s.mux.Get("/v1/homes/{id}", h.getHome)
	s.mux.Get("/v1/facilities", h.listFacilities)
	s.mux.Get("/v1/search/suggestions", h.suggestions)

	// Writes require a caller identity.
	s.mux.Group(func(r chi.Router) {
		r.Use(RequireUser)

		r.Post("/v1/hostels", h.createProvider(domain.KindHostel))
		r.Put("/v1/hostels/{id}", h.replaceProvider(domain.KindHostel))
		r.Delete("/v1/hostels/{id}", h.deleteProvider(domain.KindHostel))
		r.Post("/v1/hostels/{id}/images", h.appendImages(domain.KindHostel))

		r.Post("/v1/homes", h.createProvider(domain.KindHome))
		r.Put("/v1/homes/{id}", h.replaceProvider(domain.KindHome))
		r.Delete("/v1/homes/{id}", h.deleteProvider(domain.KindHome))
		r.Post("/v1/homes/{id}/images", h.appendImages(domain.KindHome))

		r.Post("/v1/rooms/{id}/images", h.appendRoomImages)

		r.Put("/v1/providers/{kind}/{id}/menu", h.putMenu)
		r.Put("/v1/providers/{kind}/{id}/meal-plans", h.putMealPlans)
		r.Put("/v1/providers/{kind}/{id}/delivery-areas", h.putDeliveryAreas)
		r.Put("/v1/providers/{kind}/{id}/features", h.putFeatures)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps application errors onto problem responses. A validation
// failure carries every offending field so the client can fix the payload
// in one round trip.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		p := problem{Type: "about:blank", Title: "Validation Failed", Status: http.StatusBadRequest, Errors: ve.Fields}
		if encErr := json.NewEncoder(w).Encode(p); encErr != nil {
			log.Error().Err(encErr).Msg("write JSON problem response failed")
		}
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "provider not found")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "caller does not own this provider")
	case errors.Is(err, domain.ErrUnknownKind):
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown provider kind")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be well-formed JSON")
		return false
	}
	return true
}

func (h *Handlers) createProvider(kind domain.ProviderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p domain.ProviderPayload
		if !decode(w, r, &p) {
			return
		}
		id, err := h.O.CreateProvider(r.Context(), userID(r), kind, p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
	}
}

func (h *Handlers) replaceProvider(kind domain.ProviderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
			return
		}
		var p domain.ProviderPayload
		if !decode(w, r, &p) {
			return
		}
		if err := h.O.ReplaceProvider(r.Context(), kind, id, userID(r), p); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

func (h *Handlers) deleteProvider(kind domain.ProviderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
			return
		}
		if err := h.O.DeleteProvider(r.Context(), kind, id, userID(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handlers) appendImages(kind domain.ProviderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
			return
		}
		var imgs []domain.ImagePayload
		if !decode(w, r, &imgs) {
			return
		}
		if err := h.O.AddImages(r.Context(), kind, id, userID(r), imgs); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]int{"added": len(imgs)})
	}
}

func (h *Handlers) appendRoomImages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	var imgs []domain.ImagePayload
	if !decode(w, r, &imgs) {
		return
	}
	if err := h.O.AddRoomImages(r.Context(), id, userID(r), imgs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"added": len(imgs)})
}

// pathRef parses the {kind}/{id} pair of the association routes. An unknown
// kind tag is a 404, same as an id that does not resolve.
func pathRef(w http.ResponseWriter, r *http.Request) (domain.ProviderRef, bool) {
	kind, err := domain.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown provider kind")
		return domain.ProviderRef{}, false
	}
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return domain.ProviderRef{}, false
	}
	return domain.ProviderRef{Kind: kind, ID: id}, true
}

func (h *Handlers) putMenu(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathRef(w, r)
	if !ok {
		return
	}
	var entries []domain.MenuEntryPayload
	if !decode(w, r, &entries) {
		return
	}
	if err := h.O.SetMenu(r.Context(), ref.Kind, ref.ID, userID(r), entries); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) putMealPlans(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathRef(w, r)
	if !ok {
		return
	}
	var plans []domain.MealPlanPayload
	if !decode(w, r, &plans) {
		return
	}
	if err := h.O.SetMealPlans(r.Context(), ref.Kind, ref.ID, userID(r), plans); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) putDeliveryAreas(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathRef(w, r)
	if !ok {
		return
	}
	var areas []domain.DeliveryAreaPayload
	if !decode(w, r, &areas) {
		return
	}
	if err := h.O.SetDeliveryAreas(r.Context(), ref.Kind, ref.ID, userID(r), areas); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) putFeatures(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathRef(w, r)
	if !ok {
		return
	}
	var features []domain.FeaturePayload
	if !decode(w, r, &features) {
		return
	}
	if err := h.O.SetFeatures(r.Context(), ref.Kind, ref.ID, userID(r), features); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handlers) getHostel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	hv, err := h.Q.GetHostel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, hv)
}

func (h *Handlers) listHostels(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListHostels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) getHome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	hv, err := h.Q.GetHome(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, hv)
}

func (h *Handlers) listHomes(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListHomes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) listFacilities(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Facilities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) suggestions(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Suggestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}
