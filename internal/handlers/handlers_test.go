package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"waste-bknd/internal/classifier"
	"waste-bknd/internal/estimation"
	"waste-bknd/internal/models"
	"waste-bknd/internal/services"
	"waste-bknd/internal/testhelpers"
)

const organicReply = "```json\n" + `{
  "material": "organic",
  "volume_liters_estimate": 10,
  "volume_confidence": 0.8,
  "material_confidence": 0.8,
  "fullness_percent": null,
  "moisture_level": "wet",
  "contamination_level": 0.3,
  "image_quality": "fair",
  "reasoning_short": "Vegetable peels"
}` + "\n```"

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Details *string         `json:"details"`
	Data    json.RawMessage `json:"data"`
	Summary json.RawMessage `json:"summary"`
	Raw     json.RawMessage `json:"geminiRaw"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func demoStore() *testhelpers.MemStore {
	return testhelpers.NewMemStore().Add(testhelpers.NewHierarchy("demo", "Demo Gram Panchayat"))
}

func newEstimateHandler(st *testhelpers.MemStore, cls services.Classifier, maxBytes int64, expose bool) *EstimateHandler {
	svc := services.NewEstimationService(
		services.NewHierarchyResolver(st, "Demo"), cls, st, estimation.NewCalculator(), zap.NewNop())
	return NewEstimateHandler(svc, zap.NewNop(), maxBytes, expose)
}

type part struct {
	name, filename, contentType string
	data                        []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+file.name+`"; filename="`+file.filename+`"`)
		if file.contentType != "" {
			h.Set("Content-Type", file.contentType)
		}
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
}

func TestEstimate_Success(t *testing.T) {
	st := demoStore()
	cls := classifier.NewMockClassifier(organicReply)
	h := newEstimateHandler(st, cls, 1<<20, true)

	req := multipartRequest(t, map[string]string{
		"containerType":         "60L_bin",
		"containerVolumeLiters": "60",
		"latitude":              "22.57",
		"longitude":             "88.36",
		"address":               " Ward 1 ",
	}, &part{name: "image", filename: "heap.png", data: pngBytes()})
	rec := httptest.NewRecorder()
	h.Estimate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Raw)

	var e models.WasteEstimation
	require.NoError(t, json.Unmarshal(env.Data, &e))
	assert.Equal(t, models.MaterialOrganic, e.MaterialType)
	assert.Equal(t, "demo-gp", e.PanchayatID)
	assert.Equal(t, models.StatusPending, e.Status)
	require.NotNil(t, e.Address)
	assert.Equal(t, "Ward 1", *e.Address)
	require.NotNil(t, e.Latitude)
	assert.Equal(t, 22.57, *e.Latitude)

	assert.Equal(t, 1, cls.Calls)
	assert.Equal(t, "image/png", cls.LastImage.MimeType)
	assert.Equal(t, "heap.png", cls.LastImage.Name)
	assert.Equal(t, "60L_bin", cls.LastPrompt.ContainerType)
	assert.Len(t, st.Estimations, 1)
}

func TestEstimate_MissingImage(t *testing.T) {
	st := demoStore()
	cls := classifier.NewMockClassifier(organicReply)
	h := newEstimateHandler(st, cls, 1<<20, true)

	rec := httptest.NewRecorder()
	h.Estimate(rec, multipartRequest(t, map[string]string{"containerType": "sack"}, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Image is required", env.Error)
	assert.Zero(t, cls.Calls)
	assert.Empty(t, st.Estimations)
}

func TestEstimate_NotMultipart(t *testing.T) {
	h := newEstimateHandler(demoStore(), classifier.NewMockClassifier(organicReply), 1<<20, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate", strings.NewReader(`{"image":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Estimate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, decode(t, rec).Details)
}

func TestEstimate_TooLarge(t *testing.T) {
	h := newEstimateHandler(demoStore(), classifier.NewMockClassifier(organicReply), 1024, true)

	req := multipartRequest(t, nil, &part{name: "image", filename: "big.jpg", contentType: "image/jpeg",
		data: bytes.Repeat([]byte{0xff}, 4096)})
	rec := httptest.NewRecorder()
	h.Estimate(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestEstimate_BadNumbers(t *testing.T) {
	for name, fields := range map[string]map[string]string{
		"volume text":     {"containerVolumeLiters": "lots"},
		"negative volume": {"containerVolumeLiters": "-5"},
		"latitude range":  {"latitude": "91"},
		"longitude range": {"longitude": "-181"},
		"latitude nan":    {"latitude": "NaN"},
	} {
		t.Run(name, func(t *testing.T) {
			cls := classifier.NewMockClassifier(organicReply)
			h := newEstimateHandler(demoStore(), cls, 1<<20, true)

			rec := httptest.NewRecorder()
			h.Estimate(rec, multipartRequest(t, fields,
				&part{name: "image", filename: "a.jpg", contentType: "image/jpeg", data: []byte{0xff, 0xd8, 0xff}}))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, cls.Calls)
		})
	}
}

func TestEstimate_UnresolvedHierarchy(t *testing.T) {
	h := newEstimateHandler(testhelpers.NewMemStore(), classifier.NewMockClassifier(organicReply), 1<<20, true)

	rec := httptest.NewRecorder()
	h.Estimate(rec, multipartRequest(t, nil,
		&part{name: "image", filename: "a.jpg", contentType: "image/jpeg", data: []byte{0xff, 0xd8, 0xff}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decode(t, rec).Error, "Demo data not found"))
}

func TestEstimate_ClassifierFailure(t *testing.T) {
	cls := &classifier.MockClassifier{
		ClassifyFunc: func(context.Context, classifier.Image, classifier.PromptContext) (*classifier.Classification, error) {
			return nil, &classifier.Error{Kind: classifier.KindAuth, Message: "missing GOOGLE_API_KEY"}
		},
	}

	t.Run("details outside production", func(t *testing.T) {
		h := newEstimateHandler(demoStore(), cls, 1<<20, true)
		rec := httptest.NewRecorder()
		h.Estimate(rec, multipartRequest(t, nil,
			&part{name: "image", filename: "a.jpg", contentType: "image/jpeg", data: []byte{0xff, 0xd8, 0xff}}))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, "AI API error. Please check GOOGLE_API_KEY.", env.Error)
		require.NotNil(t, env.Details)
		assert.Contains(t, *env.Details, "missing GOOGLE_API_KEY")
	})

	t.Run("no details in production", func(t *testing.T) {
		h := newEstimateHandler(demoStore(), cls, 1<<20, false)
		rec := httptest.NewRecorder()
		h.Estimate(rec, multipartRequest(t, nil,
			&part{name: "image", filename: "a.jpg", contentType: "image/jpeg", data: []byte{0xff, 0xd8, 0xff}}))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Nil(t, decode(t, rec).Details)
	})
}

func TestImageType(t *testing.T) {
	assert.Equal(t, "image/webp", imageType("image/webp", nil))
	assert.Equal(t, "image/png", imageType("", pngBytes()))
	assert.Equal(t, "image/png", imageType("application/octet-stream", pngBytes()))
	assert.Equal(t, "image/jpeg", imageType("", []byte("plain text")))
	assert.Equal(t, "image/jpeg", imageType("", nil))
}

func seededEstimations(n int) *testhelpers.MemStore {
	st := demoStore()
	lat, lon := 22.5, 88.3
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		e := &models.WasteEstimation{
			ID:                    "est-" + string(rune('a'+i)),
			PanchayatID:           "demo-gp",
			WardID:                "demo-w1",
			CollectorID:           "demo-col",
			CollectionDate:        base.Add(time.Duration(i) * 24 * time.Hour),
			EstimatedWeightKg:     1.25,
			EstimatedVolumeLiters: 5,
			MaterialType:          models.MaterialPlastic,
			DensityKgPerL:         0.25,
			ImageQuality:          models.ImageQualityGood,
			Confidence:            0.8,
			Status:                models.StatusPending,
		}
		if i%2 == 0 {
			e.Latitude, e.Longitude = &lat, &lon
		}
		st.Estimations = append(st.Estimations, e)
	}
	return st
}

func TestEstimationsList(t *testing.T) {
	st := seededEstimations(3)
	h := NewEstimationsHandler(services.NewEstimationQueryService(st, zap.NewNop()), zap.NewNop(), true)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/estimations?limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := decode(t, rec)
	assert.True(t, env.Success)

	var rows []models.WasteEstimation
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "est-c", rows[0].ID)

	var sum models.EstimationSummary
	require.NoError(t, json.Unmarshal(env.Summary, &sum))
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, 2.5, sum.TotalWeightKg)
	assert.Equal(t, 10.0, sum.TotalVolumeLiters)
	assert.Equal(t, 0.8, sum.AvgConfidence)
}

func TestEstimationsList_Errors(t *testing.T) {
	t.Run("bad filter", func(t *testing.T) {
		h := NewEstimationsHandler(services.NewEstimationQueryService(seededEstimations(1), zap.NewNop()), zap.NewNop(), true)
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/estimations?fromDate=yesterday", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		st := seededEstimations(1)
		st.Err = errors.New("database query: list estimations: boom")
		h := NewEstimationsHandler(services.NewEstimationQueryService(st, zap.NewNop()), zap.NewNop(), true)
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/estimations", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, "Failed to fetch estimations", env.Error)
		require.NotNil(t, env.Details)
		assert.Contains(t, *env.Details, "boom")
	})
}

func TestEstimationsGet(t *testing.T) {
	h := NewEstimationsHandler(services.NewEstimationQueryService(seededEstimations(2), zap.NewNop()), zap.NewNop(), true)
	r := chi.NewRouter()
	r.Get("/estimations/{id}", h.Get)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/estimations/est-b", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var e models.WasteEstimation
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &e))
	assert.Equal(t, "est-b", e.ID)
	require.NotNil(t, e.GramPanchayat)
	assert.Equal(t, "Demo Gram Panchayat", e.GramPanchayat.Name)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/estimations/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEstimationsExport(t *testing.T) {
	h := NewEstimationsHandler(services.NewEstimationQueryService(seededEstimations(2), zap.NewNop()), zap.NewNop(), true)

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodGet, "/api/v1/estimations/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestEstimationsGeoJSON(t *testing.T) {
	h := NewEstimationsHandler(services.NewEstimationQueryService(seededEstimations(3), zap.NewNop()), zap.NewNop(), true)

	rec := httptest.NewRecorder()
	h.GeoJSON(rec, httptest.NewRequest(http.MethodGet, "/api/v1/estimations/geojson", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, []float64{88.3, 22.5}, fc.Features[0].Geometry.Coordinates)
}

func TestAdmin_ListPanchayats(t *testing.T) {
	h := NewAdminHandler(services.NewAdminService(demoStore(), zap.NewNop()), zap.NewNop(), true)

	rec := httptest.NewRecorder()
	h.ListPanchayats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/panchayats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []models.GramPanchayat
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Demo Gram Panchayat", rows[0].Name)
	require.NotNil(t, rows[0].Block)
	assert.NotNil(t, rows[0].Block.ZillaPanchayat)
	require.NotNil(t, rows[0].Count)
}

func TestAdmin_CreatePanchayat(t *testing.T) {
	post := func(h *AdminHandler, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.CreatePanchayat(rec, httptest.NewRequest(http.MethodPost, "/api/v1/panchayats", strings.NewReader(body)))
		return rec
	}

	t.Run("created", func(t *testing.T) {
		h := NewAdminHandler(services.NewAdminService(demoStore(), zap.NewNop()), zap.NewNop(), true)
		rec := post(h, `{"name":"Nandigram","code":"GP-NEW","blockId":"demo-blk","population":"1200","area":3.5}`)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var gp models.GramPanchayat
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &gp))
		assert.Equal(t, "GP-NEW", gp.Code)
		require.NotNil(t, gp.Population)
		assert.Equal(t, 1200, *gp.Population)
		require.NotNil(t, gp.Block)
	})

	t.Run("missing fields", func(t *testing.T) {
		h := NewAdminHandler(services.NewAdminService(demoStore(), zap.NewNop()), zap.NewNop(), true)
		rec := post(h, `{"name":"Nandigram"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Name, code, and blockId are required", decode(t, rec).Error)
	})

	t.Run("invalid json", func(t *testing.T) {
		h := NewAdminHandler(services.NewAdminService(demoStore(), zap.NewNop()), zap.NewNop(), true)
		assert.Equal(t, http.StatusBadRequest, post(h, `{`).Code)
	})

	t.Run("store failure", func(t *testing.T) {
		st := demoStore()
		st.Err = errors.New("database connection: create panchayat: dial tcp: connection refused")
		h := NewAdminHandler(services.NewAdminService(st, zap.NewNop()), zap.NewNop(), false)
		rec := post(h, `{"name":"N","code":"C","blockId":"demo-blk"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, "Failed to create Gram Panchayat", env.Error)
		assert.Nil(t, env.Details)
	})
}

func TestAdmin_ListCollectorsBadRole(t *testing.T) {
	h := NewAdminHandler(services.NewAdminService(demoStore(), zap.NewNop()), zap.NewNop(), true)

	rec := httptest.NewRecorder()
	h.ListCollectors(rec, httptest.NewRequest(http.MethodGet, "/api/v1/collectors?role=mayor", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
