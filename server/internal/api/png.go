package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/launchdash/launchdash/server/internal/render"
)

type pngBuffer = bytes.Buffer

// writePNG renders into memory first so a failed render can still produce a
// JSON error instead of a truncated image.
func writePNG(w http.ResponseWriter, draw func(*pngBuffer) error) {
	var buf pngBuffer
	if err := draw(&buf); err != nil {
		if errors.Is(err, render.ErrEmpty) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		slog.Error("api: chart render failed", "err", err)
		jsonErr(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}
