package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// MaxBodyBytes caps request bodies read by DecodeBody.
const MaxBodyBytes = 64 << 10

var ErrUnsupportedMediaType = errors.New("httpx: unsupported media type")

// WriteJSON writes v as JSON with the given status. Responses are never
// cached since most of them carry credentials.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// BearerChallenge sets an RFC 6750 WWW-Authenticate header.
func BearerChallenge(w http.ResponseWriter, code, desc string) {
	desc = strings.ReplaceAll(desc, `"`, `'`)
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer error=%q, error_description=%q`, code, desc))
}

// DecodeBody fills dst from a JSON body, or from a urlencoded/multipart form
// using formFields to map form keys onto pointers in dst. A missing
// Content-Type is treated as JSON.
func DecodeBody(r *http.Request, dst any, formFields func(get func(string) string)) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodyBytes)

	ct := r.Header.Get("Content-Type")
	mt := "application/json"
	if ct != "" {
		var err error
		if mt, _, err = mime.ParseMediaType(ct); err != nil {
			return fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
		}
	}

	switch mt {
	case "application/json":
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("decode json body: %w", err)
		}
		return nil
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if formFields == nil {
			return ErrUnsupportedMediaType
		}
		var err error
		if mt == "multipart/form-data" {
			err = r.ParseMultipartForm(MaxBodyBytes)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return fmt.Errorf("parse form: %w", err)
		}
		formFields(r.PostForm.Get)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mt)
	}
}
