package httputil

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "maklarsystem/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "bad_request", body["error"])
		assert.Equal(t, "invalid input", body["error_description"])
	})

	t.Run("validation details are rendered", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.NewWithDetails(dErrors.CodeValidation, "validation failed", []string{"email"}))

		require.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, []any{"email"}, body["errors"])
	})

	t.Run("increment violation is unprocessable", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeIncrementViolation, "bid too low"))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("plain error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, io.ErrUnexpectedEOF)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

type sampleRequest struct {
	Name string `json:"name"`
}

func (r *sampleRequest) Normalize() { r.Name = strings.TrimSpace(r.Name) }

func (r *sampleRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("normalizes and validates", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  Anna  "}`))
		w := httptest.NewRecorder()
		req, ok := DecodeAndPrepare[sampleRequest](w, r, logger, r.Context(), "req")
		require.True(t, ok)
		assert.Equal(t, "Anna", req.Name)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[sampleRequest](w, r, logger, r.Context(), "req")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("reports validation failure", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"   "}`))
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[sampleRequest](w, r, logger, r.Context(), "req")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "name is required")
	})

	t.Run("reports a mistyped field as a validation failure", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":42}`))
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[sampleRequest](w, r, logger, r.Context(), "req")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"validation_error"`)
		assert.Contains(t, w.Body.String(), `"path":"name"`)
		assert.Contains(t, w.Body.String(), `"kind":"format"`)
	})
}

type nestedRequest struct {
	Inner *struct {
		Count *int  `json:"count"`
		On    *bool `json:"on"`
	} `json:"inner"`
	Label *string   `json:"label"`
	Flag  *bool     `json:"flag"`
	Tags  *[]string `json:"tags"`
	Items []struct {
		Size *float64 `json:"size"`
	} `json:"items"`
}

func TestDecodeKeepsDecodingPastTypeMismatch(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"inner":{"count":"3"},"label":"x"}`))
	req, mismatched, err := Decode[nestedRequest](r)
	require.NoError(t, err)
	require.Len(t, mismatched, 1)
	assert.Equal(t, "inner.count", mismatched[0].Path)
	assert.Equal(t, "format", mismatched[0].Kind)
	require.NotNil(t, req.Label)
	assert.Equal(t, "x", *req.Label)
	require.NotNil(t, req.Inner)
	assert.Nil(t, req.Inner.Count)

	code := dErrors.CodeOf(MismatchError(mismatched))
	assert.Equal(t, dErrors.CodeValidation, code)
}

func TestDecodeReportsEveryTypeMismatch(t *testing.T) {
	body := `{
		"inner": {"count": 2.5, "on": "ja"},
		"label": 7,
		"flag": "nej",
		"tags": ["a", 1],
		"items": [{"size": 3}, {"size": "stor"}]
	}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req, mismatched, err := Decode[nestedRequest](r)
	require.NoError(t, err)

	paths := make([]string, len(mismatched))
	for i, m := range mismatched {
		paths[i] = m.Path
		assert.Equal(t, "format", m.Kind, m.Path)
	}
	assert.ElementsMatch(t, []string{
		"inner.count", "inner.on", "label", "flag", "tags.1", "items.1.size",
	}, paths)

	require.NotNil(t, req.Inner)
	assert.Nil(t, req.Inner.Count)
	assert.Nil(t, req.Inner.On)
	assert.Nil(t, req.Label)
	assert.Nil(t, req.Flag)
	assert.Nil(t, req.Tags)
	require.Len(t, req.Items, 2)
	require.NotNil(t, req.Items[0].Size)
	assert.Equal(t, 3.0, *req.Items[0].Size)
	assert.Nil(t, req.Items[1].Size)
}

func TestDecodeRejectsSyntaxErrors(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"label":`))
	_, mismatched, err := Decode[nestedRequest](r)
	require.Error(t, err)
	assert.Empty(t, mismatched)
}

func TestDecodeRejectsNonObjectBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[1, 2]`))
	_, mismatched, err := Decode[nestedRequest](r)
	require.Error(t, err)
	assert.Empty(t, mismatched)
}
