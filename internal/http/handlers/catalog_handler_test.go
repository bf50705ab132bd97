package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tbourn/go-recipe-backend/internal/domain"
	"github.com/tbourn/go-recipe-backend/internal/services"
)

type stubCatalogSvc struct {
	listTagsFn        func(ctx context.Context) ([]domain.Tag, error)
	getTagFn          func(ctx context.Context, id int64) (*domain.Tag, error)
	listIngredientsFn func(ctx context.Context, name string) ([]domain.Ingredient, error)
	getIngredientFn   func(ctx context.Context, id int64) (*domain.Ingredient, error)
}

func (s *stubCatalogSvc) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.listTagsFn(ctx)
}

func (s *stubCatalogSvc) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	return s.getTagFn(ctx, id)
}

func (s *stubCatalogSvc) ListIngredients(ctx context.Context, name string) ([]domain.Ingredient, error) {
	return s.listIngredientsFn(ctx, name)
}

func (s *stubCatalogSvc) GetIngredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	return s.getIngredientFn(ctx, id)
}

func TestListTags(t *testing.T) {
	svc := &stubCatalogSvc{
		listTagsFn: func(context.Context) ([]domain.Tag, error) {
			return []domain.Tag{{ID: 1, Name: "breakfast", Color: "#ff0000", Slug: "breakfast"}}, nil
		},
	}
	h := New(nil, svc, nil, nil, nil, nil)
	r := newHandlerRouter(h)

	w := doRequest(t, r, http.MethodGet, "/api/v1/tags", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var tags []domain.Tag
	if err := json.Unmarshal(w.Body.Bytes(), &tags); err != nil || len(tags) != 1 || tags[0].Slug != "breakfast" {
		t.Fatalf("body = %s (%v)", w.Body.String(), err)
	}
}

func TestGetTag(t *testing.T) {
	svc := &stubCatalogSvc{
		getTagFn: func(_ context.Context, id int64) (*domain.Tag, error) {
			if id != 2 {
				return nil, services.ErrTagNotFound
			}
			return &domain.Tag{ID: 2, Name: "dinner", Slug: "dinner"}, nil
		},
	}
	h := New(nil, svc, nil, nil, nil, nil)
	r := newHandlerRouter(h)

	if w := doRequest(t, r, http.MethodGet, "/api/v1/tags/2", "", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w := doRequest(t, r, http.MethodGet, "/api/v1/tags/404", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing tag: status = %d, want 404", w.Code)
	}
	if w := doRequest(t, r, http.MethodGet, "/api/v1/tags/abc", "", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id: status = %d, want 400", w.Code)
	}
}

func TestListIngredients_ForwardsNameFilter(t *testing.T) {
	var gotName string
	svc := &stubCatalogSvc{
		listIngredientsFn: func(_ context.Context, name string) ([]domain.Ingredient, error) {
			gotName = name
			return []domain.Ingredient{{ID: 10, Name: "flour", MeasurementUnit: "g"}}, nil
		},
	}
	h := New(nil, svc, nil, nil, nil, nil)
	r := newHandlerRouter(h)

	w := doRequest(t, r, http.MethodGet, "/api/v1/ingredients?name=flo", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gotName != "flo" {
		t.Fatalf("name filter = %q, want %q", gotName, "flo")
	}
}

func TestGetIngredient(t *testing.T) {
	svc := &stubCatalogSvc{
		getIngredientFn: func(_ context.Context, id int64) (*domain.Ingredient, error) {
			if id != 10 {
				return nil, services.ErrIngredientNotFound
			}
			return &domain.Ingredient{ID: 10, Name: "flour", MeasurementUnit: "g"}, nil
		},
	}
	h := New(nil, svc, nil, nil, nil, nil)
	r := newHandlerRouter(h)

	if w := doRequest(t, r, http.MethodGet, "/api/v1/ingredients/10", "", ""); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w := doRequest(t, r, http.MethodGet, "/api/v1/ingredients/404", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing ingredient: status = %d, want 404", w.Code)
	}
}
