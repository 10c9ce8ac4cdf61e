package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/unkn0wn-root/wtcache"
)

const maxBody = 1 << 20

type keysHandler struct {
	c wtcache.Cache[string, string]
}

func (h *keysHandler) mount(r chi.Router) {
	r.Route("/keys", func(r chi.Router) {
		r.Get("/", wrap(h.list))
		r.Get("/{key}", wrap(h.get))
		r.Head("/{key}", h.head)
		r.Put("/{key}", wrap(h.put))
		r.Delete("/{key}", wrap(h.remove))
		r.Post("/{key}/evict", wrap(h.evict))
	})
}

type valueRequest struct {
	Value *string `json:"value"`
}

type valueDTO struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

type keysDTO struct {
	Keys []string `json:"keys"`
}

func keyParam(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if key == "" {
		return "", badRequest("empty key")
	}
	return key, nil
}

func (h *keysHandler) list(w http.ResponseWriter, _ *http.Request) error {
	keys := h.c.Keys()
	sort.Strings(keys)
	writeSuccess(w, http.StatusOK, keysDTO{Keys: keys})
	return nil
}

func (h *keysHandler) get(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	v, err := h.c.GetValue(r.Context(), key)
	if err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key, Value: v})
	return nil
}

// head answers ContainsKey, or ContainsKeyInCache with ?cached=1. No body.
func (h *keysHandler) head(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var (
		ok  bool
		err error
	)
	if r.URL.Query().Get("cached") == "1" {
		ok, err = h.c.ContainsKeyInCache(r.Context(), key)
	} else {
		ok, err = h.c.ContainsKey(r.Context(), key)
	}
	switch {
	case err != nil:
		w.WriteHeader(fromError(err).Status)
	case ok:
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *keysHandler) put(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	var req valueRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	if req.Value == nil {
		return invalidJSON("missing value")
	}
	if err := h.c.SetValue(r.Context(), key, *req.Value); err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key, Value: *req.Value})
	return nil
}

func (h *keysHandler) remove(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	if err := h.c.RemoveKey(r.Context(), key); err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key})
	return nil
}

func (h *keysHandler) evict(w http.ResponseWriter, r *http.Request) error {
	key, err := keyParam(r)
	if err != nil {
		return err
	}
	if err := h.c.EvictKey(r.Context(), key); err != nil {
		return err
	}
	writeSuccess(w, http.StatusOK, valueDTO{Key: key})
	return nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return invalidJSON("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var se *json.SyntaxError
		var ute *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return invalidJSON("empty body")
		case errors.As(err, &se):
			return invalidJSON("malformed JSON")
		case errors.As(err, &ute):
			return invalidJSON("type mismatch in JSON")
		default:
			return invalidJSON("invalid JSON")
		}
	}
	if dec.More() {
		return invalidJSON("multiple JSON values")
	}
	return nil
}
