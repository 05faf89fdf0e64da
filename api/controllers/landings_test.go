package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chokistore/backend/internal/landings"
	pkgerrors "github.com/chokistore/backend/pkg/errors"
)

type stubLandings struct {
	landings.Service
	slug    string
	created landings.CreateInput
}

func (s *stubLandings) GetBySlug(_ context.Context, slug string) (*landings.PublicLandingDTO, error) {
	s.slug = slug
	if slug != "san-valentin" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "landing not found")
	}
	return &landings.PublicLandingDTO{Slug: slug, Name: "Choki Lover", ButtonText: "Entrar"}, nil
}

func (s *stubLandings) Create(_ context.Context, input landings.CreateInput) (*landings.LandingDTO, error) {
	s.created = input
	return &landings.LandingDTO{Slug: input.Slug, Name: input.Name, IsActive: input.Active}, nil
}

func TestPublicGetLandingReadsSlug(t *testing.T) {
	svc := &stubLandings{}

	resp := httptest.NewRecorder()
	PublicGetLanding(svc, testLogger())(resp, addRouteParam(newRequest(http.MethodGet, "/api/public/landings/san-valentin", ""), "slug", "san-valentin"))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var body landings.PublicLandingDTO
	decodeData(t, resp, &body)
	if body.Name != "Choki Lover" || svc.slug != "san-valentin" {
		t.Fatalf("unexpected landing %+v (slug %q)", body, svc.slug)
	}

	resp = httptest.NewRecorder()
	PublicGetLanding(svc, testLogger())(resp, addRouteParam(newRequest(http.MethodGet, "/api/public/landings/navidad", ""), "slug", "navidad"))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminCreateLandingDefaultsActive(t *testing.T) {
	svc := &stubLandings{}

	resp := httptest.NewRecorder()
	AdminCreateLanding(svc, testLogger())(resp, newRequest(http.MethodPost, "/api/v1/admin/landings", `{"slug":"san-valentin","name":"Choki Lover","button_text":"Entrar"}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.created.Active || svc.created.ButtonText != "Entrar" {
		t.Fatalf("unexpected input %+v", svc.created)
	}

	resp = httptest.NewRecorder()
	AdminCreateLanding(svc, testLogger())(resp, newRequest(http.MethodPost, "/api/v1/admin/landings", `{"slug":"sin-nombre"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestLandingHandlersWithoutService(t *testing.T) {
	resp := httptest.NewRecorder()
	AdminListLandings(nil, testLogger())(resp, newRequest(http.MethodGet, "/api/v1/admin/landings", ""))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
