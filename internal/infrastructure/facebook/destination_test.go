package facebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CryptoNewsRelay/internal/domain"
)

func TestEligibleRequiresImage(t *testing.T) {
	t.Parallel()

	dest := NewDestination("https://graph", "page-1", "token", nil)

	item := domain.NewsItem{Title: "Tajuk", ImageURL: "https://img/1.jpg"}
	if ok, _ := dest.Eligible(item); !ok {
		t.Fatalf("expected eligible item")
	}

	item.ImageURL = ""
	if ok, reason := dest.Eligible(item); ok || reason != "image required" {
		t.Fatalf("image gate failed: %v %q", ok, reason)
	}
}

func TestEligibleIsLenientAboutTranslation(t *testing.T) {
	t.Parallel()

	dest := NewDestination("https://graph", "page-1", "token", nil)

	// A half-translated item keeps its original title and is still posted.
	item := domain.NewsItem{
		Title:        "Bitcoin rises",
		ImageURL:     "https://img/1.jpg",
		FailedFields: []string{domain.FieldTitle, domain.FieldBody},
	}
	if ok, _ := dest.Eligible(item); !ok {
		t.Fatalf("translation failure must not gate the photo feed")
	}
}

func TestPublishItem(t *testing.T) {
	t.Parallel()

	var form map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page-1/photos" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = r.PostForm
	}))
	defer server.Close()

	dest := NewDestination(server.URL, "page-1", "token-xyz", server.Client())

	item := domain.NewsItem{
		Title:     "Tajuk",
		Summary:   "Ringkasan",
		ImageURL:  "https://img/1.jpg",
		SourceURL: "https://a/1",
	}
	if err := dest.PublishItem(context.Background(), item); err != nil {
		t.Fatalf("PublishItem returned error: %v", err)
	}

	if got := form["url"]; len(got) != 1 || got[0] != "https://img/1.jpg" {
		t.Fatalf("image url not sent: %v", form)
	}
	if got := form["access_token"]; len(got) != 1 || got[0] != "token-xyz" {
		t.Fatalf("access token not sent")
	}

	caption := form["caption"][0]
	for _, want := range []string{"Tajuk", "Ringkasan", "https://a/1"} {
		if !strings.Contains(caption, want) {
			t.Fatalf("caption missing %q: %q", want, caption)
		}
	}
}

func TestPublishItemError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	dest := NewDestination(server.URL, "page-1", "token", server.Client())
	err := dest.PublishItem(context.Background(), domain.NewsItem{Title: "x", ImageURL: "https://img/1.jpg"})
	if err == nil {
		t.Fatalf("expected error for rejected photo")
	}
}
