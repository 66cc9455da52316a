package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maklarsystem/internal/validation/metrics"
	ptestutil "maklarsystem/pkg/testutil"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newRouter(t *testing.T) (http.Handler, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	r := chi.NewRouter()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), m).Register(r)
	return r, m
}

func post(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := ptestutil.WithRequestTime(ptestutil.NewJSONRequest(t, http.MethodPost, path, body), now)
	return ptestutil.DoRequest(router, req)
}

func TestValidateContact(t *testing.T) {
	router, m := newRouter(t)

	t.Run("create individual", func(t *testing.T) {
		rr := post(t, router, "/validate/contacts", map[string]string{
			"typ":          "privatperson",
			"fornamn":      "Anna",
			"efternamn":    "Svensson",
			"personnummer": "811218-9876",
			"email":        "Anna@Example.se",
		})
		ptestutil.AssertStatus(t, rr, http.StatusOK)
		resp := ptestutil.UnmarshalResponse[struct {
			Valid   bool              `json:"valid"`
			Variant string            `json:"variant"`
			Data    map[string]string `json:"data"`
		}](t, rr)
		assert.True(t, resp.Valid)
		assert.Equal(t, "create", resp.Variant)
		assert.Equal(t, "19811218-9876", resp.Data["personnummer"])
		assert.Equal(t, "anna@example.se", resp.Data["email"])
		assert.Equal(t, "ovrig", resp.Data["kategori"])
	})

	t.Run("update accepts a lone email that create rejects", func(t *testing.T) {
		body := map[string]string{"email": "kontakt@example.se"}

		rr := post(t, router, "/validate/contacts?variant=update", body)
		ptestutil.AssertStatus(t, rr, http.StatusOK)

		rr = post(t, router, "/validate/contacts?variant=create", body)
		errBody := ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		assert.Contains(t, errBody.FieldPaths(t), "typ")
	})

	t.Run("unknown variant", func(t *testing.T) {
		rr := post(t, router, "/validate/contacts?variant=upsert", map[string]string{})
		ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Validations.WithLabelValues("contact", "create", "valid"))+
		testutil.ToFloat64(m.Validations.WithLabelValues("contact", "update", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("contact", "create", "invalid")))
}

func TestValidateProperty(t *testing.T) {
	router, _ := newRouter(t)

	rr := post(t, router, "/validate/properties?variant=update", map[string]any{
		"specifications": map[string]any{"livingArea": 120, "totalArea": 100},
	})
	errBody := ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
	assert.Equal(t, "cross_field", errBody.FieldKinds(t)["specifications.totalArea"])

	t.Run("mistyped value is reported with the other failures", func(t *testing.T) {
		rr := post(t, router, "/validate/properties?variant=update", map[string]any{
			"specifications": map[string]any{"rooms": "3"},
			"pricing":        map[string]any{"askingPrice": 50},
		})
		errBody := ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		kinds := errBody.FieldKinds(t)
		assert.Equal(t, "format", kinds["specifications.rooms"])
		assert.Equal(t, "range", kinds["pricing.askingPrice"])
	})

	t.Run("every mistyped value is reported and none is validated as zero", func(t *testing.T) {
		rr := post(t, router, "/validate/properties?variant=update", map[string]any{
			"specifications": map[string]any{"livingArea": "100", "rooms": "3", "totalArea": 80},
		})
		errBody := ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		assert.ElementsMatch(t, []string{"specifications.livingArea", "specifications.rooms"}, errBody.FieldPaths(t))
		kinds := errBody.FieldKinds(t)
		assert.Equal(t, "format", kinds["specifications.livingArea"])
		assert.Equal(t, "format", kinds["specifications.rooms"])
	})

	t.Run("mistyped booleans are reported next to other mistyped fields", func(t *testing.T) {
		rr := post(t, router, "/validate/properties?variant=update", map[string]any{
			"specifications": map[string]any{"balcony": "ja", "elevator": "ja"},
			"pricing":        map[string]any{"askingPrice": 3_000_000, "monthlyFee": "4500"},
		})
		errBody := ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		assert.ElementsMatch(t, []string{
			"specifications.balcony",
			"specifications.elevator",
			"pricing.monthlyFee",
		}, errBody.FieldPaths(t))
		for path, kind := range errBody.FieldKinds(t) {
			assert.Equal(t, "format", kind, path)
		}
	})

	t.Run("mistyped mandatory value is not also reported missing", func(t *testing.T) {
		rr := post(t, router, "/validate/properties", map[string]any{
			"specifications": map[string]any{"rooms": "3"},
		})
		errBody := ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		count := 0
		for _, p := range errBody.FieldPaths(t) {
			if p == "specifications.rooms" {
				count++
			}
		}
		assert.Equal(t, 1, count)
		assert.Equal(t, "format", errBody.FieldKinds(t)["specifications.rooms"])
	})

	t.Run("malformed body stays a bad request", func(t *testing.T) {
		req := ptestutil.WithRequestTime(httptest.NewRequest(http.MethodPost, "/validate/properties", strings.NewReader(`{"pricing":`)), now)
		rr := ptestutil.DoRequest(router, req)
		ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}

func TestValidateViewings(t *testing.T) {
	router, _ := newRouter(t)
	listing := "550e8400-e29b-41d4-a716-446655440000"

	t.Run("single", func(t *testing.T) {
		rr := post(t, router, "/validate/viewings", map[string]any{
			"objekt_id": listing,
			"datum":     "2025-06-14",
			"starttid":  "10:00",
			"sluttid":   "09:00",
		})
		errBody := ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		assert.Equal(t, []string{"sluttid"}, errBody.FieldPaths(t))
	})

	t.Run("bulk", func(t *testing.T) {
		rr := post(t, router, "/validate/viewings/bulk", map[string]any{
			"objekt_id": listing,
			"visningar": []map[string]string{
				{"datum": "2025-06-14", "starttid": "10:00", "sluttid": "10:45"},
				{"datum": "2025-06-15", "starttid": "13:00", "sluttid": "14:00", "typ": "privat"},
			},
		})
		ptestutil.AssertStatus(t, rr, http.StatusOK)
		resp := ptestutil.UnmarshalResponse[struct {
			Data []ViewingResponse `json:"data"`
		}](t, rr)
		require.Len(t, resp.Data, 2)
		assert.Equal(t, 45, resp.Data[0].Minuter)
		assert.Equal(t, "privat", resp.Data[1].Typ)
	})

	t.Run("filter", func(t *testing.T) {
		rr := post(t, router, "/validate/viewings/filter", map[string]string{
			"fromDate": "2025-06-20",
			"toDate":   "2025-06-10",
		})
		errBody := ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation_error")
		assert.Equal(t, []string{"toDate"}, errBody.FieldPaths(t))
	})
}

func TestValidateIdentifier(t *testing.T) {
	router, _ := newRouter(t)

	tests := []struct {
		name       string
		kind       string
		value      string
		valid      bool
		normalized string
		reason     string
	}{
		{"personnummer short form", "personnummer", "8112189876", true, "811218-9876", ""},
		{"personnummer checksum", "personnummer", "8112189875", false, "811218-9875", "checksum"},
		{"personnummer leap day", "personnummer", "900229-0006", false, "900229-0006", "calendar"},
		{"organisationsnummer", "organisationsnummer", "5560169640", true, "556016-9640", ""},
		{"organisationsnummer leading one", "organisationsnummer", "102100-5416", false, "102100-5416", "range"},
		{"postnummer", "postnummer", "11455", true, "114 55", ""},
		{"telefonnummer", "telefonnummer", "+46 70 123 45 67", true, "0701234567", ""},
		{"fastighetsbeteckning", "fastighetsbeteckning", "Stockholm  Söder 1:23", true, "Stockholm Söder 1:23", ""},
		{"fastighetsbeteckning separator", "fastighetsbeteckning", "Stockholm 1-23", false, "Stockholm 1-23", "format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, router, "/validate/identifiers/"+tt.kind, IdentifierRequest{Value: tt.value})
			ptestutil.AssertStatus(t, rr, http.StatusOK)
			resp := ptestutil.UnmarshalResponse[IdentifierResponse](t, rr)
			assert.Equal(t, tt.valid, resp.Valid)
			assert.Equal(t, tt.normalized, resp.Normalized)
			assert.Equal(t, tt.reason, resp.Reason)
		})
	}

	t.Run("formatted forms", func(t *testing.T) {
		rr := post(t, router, "/validate/identifiers/personnummer", IdentifierRequest{Value: "8112189876"})
		assert.Equal(t, "19811218-9876", ptestutil.UnmarshalResponse[IdentifierResponse](t, rr).Formatted)

		rr = post(t, router, "/validate/identifiers/telefonnummer", IdentifierRequest{Value: "0701234567"})
		assert.Equal(t, "070-123 45 67", ptestutil.UnmarshalResponse[IdentifierResponse](t, rr).Formatted)
	})

	t.Run("unknown kind", func(t *testing.T) {
		rr := post(t, router, "/validate/identifiers/iban", IdentifierRequest{Value: "x"})
		ptestutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("blank value", func(t *testing.T) {
		rr := post(t, router, "/validate/identifiers/postnummer", IdentifierRequest{})
		ptestutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}
