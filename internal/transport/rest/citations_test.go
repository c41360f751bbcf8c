package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/citebase/internal/config"
	"github.com/heartmarshall/citebase/internal/domain"
	"github.com/heartmarshall/citebase/internal/service/citation"
)

type citationServiceMock struct {
	CreateFunc        func(ctx context.Context, input citation.CreateInput) (*domain.Citation, error)
	UpdateFunc        func(ctx context.Context, input citation.UpdateInput) (*domain.Citation, error)
	DeleteFunc        func(ctx context.Context, id int64) error
	GetByIDFunc       func(ctx context.Context, id int64) (*domain.Citation, error)
	GetByKeyFunc      func(ctx context.Context, key string) (*domain.Citation, error)
	ListFunc          func(ctx context.Context, page, perPage *int) ([]domain.Citation, error)
	SearchFunc        func(ctx context.Context, filter domain.SearchFilter) ([]domain.Citation, error)
	ExportFunc        func(ctx context.Context, input citation.ExportInput) (string, error)
	LookupDOIFunc     func(ctx context.Context, doi string) (domain.Fields, error)
	EntryTypesFunc    func(ctx context.Context) ([]domain.EntryType, error)
	DefaultFieldsFunc func(ctx context.Context, entryTypeID int64) ([]string, error)
	TagsFunc          func(ctx context.Context) ([]domain.Classification, error)
	CategoriesFunc    func(ctx context.Context) ([]domain.Classification, error)
}

func (m *citationServiceMock) Create(ctx context.Context, input citation.CreateInput) (*domain.Citation, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, input)
	}
	return nil, domain.ErrNotFound
}

func (m *citationServiceMock) Update(ctx context.Context, input citation.UpdateInput) (*domain.Citation, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, input)
	}
	return nil, domain.ErrNotFound
}

func (m *citationServiceMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *citationServiceMock) GetByID(ctx context.Context, id int64) (*domain.Citation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *citationServiceMock) GetByKey(ctx context.Context, key string) (*domain.Citation, error) {
	if m.GetByKeyFunc != nil {
		return m.GetByKeyFunc(ctx, key)
	}
	return nil, domain.ErrNotFound
}

func (m *citationServiceMock) List(ctx context.Context, page, perPage *int) ([]domain.Citation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page, perPage)
	}
	return nil, nil
}

func (m *citationServiceMock) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Citation, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, filter)
	}
	return nil, nil
}

func (m *citationServiceMock) Export(ctx context.Context, input citation.ExportInput) (string, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, input)
	}
	return "", nil
}

func (m *citationServiceMock) LookupDOI(ctx context.Context, doi string) (domain.Fields, error) {
	if m.LookupDOIFunc != nil {
		return m.LookupDOIFunc(ctx, doi)
	}
	return nil, domain.ErrNotFound
}

func (m *citationServiceMock) EntryTypes(ctx context.Context) ([]domain.EntryType, error) {
	if m.EntryTypesFunc != nil {
		return m.EntryTypesFunc(ctx)
	}
	return nil, nil
}

func (m *citationServiceMock) DefaultFields(ctx context.Context, entryTypeID int64) ([]string, error) {
	if m.DefaultFieldsFunc != nil {
		return m.DefaultFieldsFunc(ctx, entryTypeID)
	}
	return nil, nil
}

func (m *citationServiceMock) Tags(ctx context.Context) ([]domain.Classification, error) {
	if m.TagsFunc != nil {
		return m.TagsFunc(ctx)
	}
	return nil, nil
}

func (m *citationServiceMock) Categories(ctx context.Context) ([]domain.Classification, error) {
	if m.CategoriesFunc != nil {
		return m.CategoriesFunc(ctx)
	}
	return nil, nil
}

func newTestRouter(svc citationService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(
		logger,
		NewCitationHandler(svc, logger),
		NewHealthHandler(&dbPingerMock{}, "test"),
		config.CORSConfig{AllowedOrigins: "*"},
	)
}

func sampleCitation() *domain.Citation {
	return &domain.Citation{
		ID:          7,
		EntryType:   domain.EntryType{ID: 2, Name: "book"},
		CitationKey: "Doe-2020",
		Fields:      domain.Fields{"title": "On Testing", "year": float64(2020)},
		Tags:        []domain.Classification{{ID: 1, Name: "testing"}},
	}
}

func TestCitations_Create(t *testing.T) {
	svc := &citationServiceMock{
		CreateFunc: func(ctx context.Context, input citation.CreateInput) (*domain.Citation, error) {
			assert.Equal(t, int64(2), input.EntryTypeID)
			assert.Equal(t, "Doe 2020", input.CitationKey)
			return sampleCitation(), nil
		},
	}
	router := newTestRouter(svc)

	body := `{"entryTypeId": 2, "citationKey": "Doe 2020", "fields": {"title": "On Testing"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/citations/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Doe-2020", resp["citationKey"])
	assert.Equal(t, "2020", resp["fields"].(map[string]any)["year"], "year renders as an integer string")
}

func TestCitations_Create_ValidationError400(t *testing.T) {
	svc := &citationServiceMock{
		CreateFunc: func(ctx context.Context, input citation.CreateInput) (*domain.Citation, error) {
			return nil, domain.NewValidationError("year", "must be a number")
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/citations/", strings.NewReader(`{"citationKey": "x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCitations_Create_Conflict409(t *testing.T) {
	svc := &citationServiceMock{
		CreateFunc: func(ctx context.Context, input citation.CreateInput) (*domain.Citation, error) {
			return nil, domain.ErrAlreadyExists
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/citations/", strings.NewReader(`{"citationKey": "x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCitations_Get_NotFound404(t *testing.T) {
	router := newTestRouter(&citationServiceMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/citations/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCitations_Get_BadID400(t *testing.T) {
	router := newTestRouter(&citationServiceMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/citations/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCitations_GetByKey(t *testing.T) {
	svc := &citationServiceMock{
		GetByKeyFunc: func(ctx context.Context, key string) (*domain.Citation, error) {
			assert.Equal(t, "Doe-2020", key)
			return sampleCitation(), nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/citations/key/Doe-2020", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCitations_List_PlainListing(t *testing.T) {
	listed := false
	svc := &citationServiceMock{
		ListFunc: func(ctx context.Context, page, perPage *int) ([]domain.Citation, error) {
			listed = true
			require.NotNil(t, page)
			require.NotNil(t, perPage)
			assert.Equal(t, 2, *page)
			assert.Equal(t, 10, *perPage)
			return []domain.Citation{*sampleCitation()}, nil
		},
		SearchFunc: func(ctx context.Context, filter domain.SearchFilter) ([]domain.Citation, error) {
			t.Fatal("paging-only request must not hit search")
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/citations/?page=2&per_page=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, listed)
}

func TestCitations_List_SearchParamsRouteToSearch(t *testing.T) {
	var gotFilter domain.SearchFilter
	svc := &citationServiceMock{
		SearchFunc: func(ctx context.Context, filter domain.SearchFilter) ([]domain.Citation, error) {
			gotFilter = filter
			return []domain.Citation{}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/citations/?author=Doe&year_from=2000&sort_by=year&direction=desc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "doe", gotFilter.Author)
	require.NotNil(t, gotFilter.YearFrom)
	assert.Equal(t, 2000, *gotFilter.YearFrom)
	assert.Equal(t, domain.SortByYear, gotFilter.SortBy)
	assert.Equal(t, domain.DirectionDESC, gotFilter.Direction)
}

func TestCitations_Delete204(t *testing.T) {
	svc := &citationServiceMock{
		DeleteFunc: func(ctx context.Context, id int64) error {
			assert.Equal(t, int64(7), id)
			return nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/citations/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCitations_Export(t *testing.T) {
	svc := &citationServiceMock{
		ExportFunc: func(ctx context.Context, input citation.ExportInput) (string, error) {
			assert.Equal(t, []int64{1, 2}, input.IDs)
			return "@book{a,\n  title = {T}\n}\n", nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/citations/export", strings.NewReader(`{"ids": [1, 2]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/x-bibtex")
	assert.Contains(t, rec.Body.String(), "@book{a,")
}

func TestCitations_LookupDOI(t *testing.T) {
	svc := &citationServiceMock{
		LookupDOIFunc: func(ctx context.Context, doi string) (domain.Fields, error) {
			assert.Equal(t, "10.1000/xyz", doi)
			return domain.Fields{"title": "A Paper", "year": 2019}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doi?doi=10.1000%2Fxyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "A Paper", resp.Fields["title"])
	assert.Equal(t, "2019", resp.Fields["year"])
}

func TestCitations_Meta(t *testing.T) {
	svc := &citationServiceMock{
		EntryTypesFunc: func(ctx context.Context) ([]domain.EntryType, error) {
			return []domain.EntryType{{ID: 1, Name: "article"}}, nil
		},
		TagsFunc: func(ctx context.Context) ([]domain.Classification, error) {
			return []domain.Classification{{ID: 1, Name: "testing"}}, nil
		},
		DefaultFieldsFunc: func(ctx context.Context, entryTypeID int64) ([]string, error) {
			assert.Equal(t, int64(1), entryTypeID)
			return []string{"author", "title", "year"}, nil
		},
	}
	router := newTestRouter(svc)

	for _, path := range []string{"/api/v1/entry-types", "/api/v1/tags", "/api/v1/categories", "/api/v1/entry-types/1/fields"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
