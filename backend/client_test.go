package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResourceURL(t *testing.T) {
	c := New("http://backend.test/")

	tests := []struct {
		resource string
		ids      []int
		want     string
	}{
		{"leads", nil, "http://backend.test/api/leads/"},
		{"leads", []int{7}, "http://backend.test/api/leads/7/"},
		{"home_page/content", nil, "http://backend.test/api/home_page/content/"},
		{"careers_page/benefits", []int{3}, "http://backend.test/api/careers_page/benefits/3/"},
	}
	for _, tt := range tests {
		if got := c.resourceURL(tt.resource, tt.ids...); got != tt.want {
			t.Errorf("resourceURL(%q, %v) = %q, want %q", tt.resource, tt.ids, got, tt.want)
		}
	}
}

func TestWithTokenSendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL).WithToken("tok123")
	var out []Lead
	if err := c.List(context.Background(), "leads", &out); err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok123")
	}
}

func TestWithTokenDoesNotMutateOriginal(t *testing.T) {
	c := New("http://backend.test")
	bound := c.WithToken("tok")
	if c.token != "" {
		t.Errorf("original client token = %q, want empty", c.token)
	}
	if bound.token != "tok" {
		t.Errorf("bound client token = %q, want %q", bound.token, "tok")
	}
}

func TestCreateSendsMultipart(t *testing.T) {
	var gotMethod, gotPath string
	var gotService, gotSubs, gotPublished string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotService = r.FormValue("service")
		gotSubs = r.FormValue("sub_services")
		gotPublished = r.FormValue("published")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	form := NewForm().
		Set("service", "AI Development").
		SetList("sub_services", []string{"Chatbots", " NLP ", ""}).
		SetBool("published", false)

	if err := New(srv.URL).Create(context.Background(), "leads", form, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/leads/" {
		t.Errorf("request = %s %s, want POST /api/leads/", gotMethod, gotPath)
	}
	if gotService != "AI Development" {
		t.Errorf("service = %q", gotService)
	}
	if gotSubs != "Chatbots,NLP" {
		t.Errorf("sub_services = %q, want comma-joined string", gotSubs)
	}
	if gotPublished != "False" {
		t.Errorf("published = %q, want the literal string False", gotPublished)
	}
}

func TestUpdateUsesPut(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if err := New(srv.URL).Update(context.Background(), "leads", 42, NewForm().Set("status", "done"), nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/leads/42/" {
		t.Errorf("request = %s %s, want PUT /api/leads/42/", gotMethod, gotPath)
	}
}

func TestErrorBodyDecoding(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error field", 400, `{"error": "Name is required"}`, "Name is required"},
		{"detail field", 403, `{"detail": "Forbidden"}`, "Forbidden"},
		{"unparseable body", 500, `<html>oops</html>`, "request failed"},
		{"empty body", 502, ``, "request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL).List(context.Background(), "leads", &[]Lead{})
			var ae *APIError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if ae.Status != tt.status || ae.Message != tt.wantMsg {
				t.Errorf("got {%d %q}, want {%d %q}", ae.Status, ae.Message, tt.status, tt.wantMsg)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&APIError{Status: 404, Message: "not found"}) {
		t.Error("404 should be not-found")
	}
	if IsNotFound(&APIError{Status: 500, Message: "boom"}) {
		t.Error("500 should not be not-found")
	}
	if IsNotFound(nil) {
		t.Error("nil should not be not-found")
	}
}

func TestChatMessageNullFields(t *testing.T) {
	var gotBody map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"next_question": "What is your name?", "next_field": "name"}`))
	}))
	defer srv.Close()

	// Opening signal: both fields null.
	reply, err := New(srv.URL).ChatMessage(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("ChatMessage: %v", err)
	}
	if string(gotBody["current_field"]) != "null" || string(gotBody["answer"]) != "null" {
		t.Errorf("begin signal body = %v, want null fields", gotBody)
	}
	if reply.NextQuestion != "What is your name?" || reply.NextField == nil || *reply.NextField != "name" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestChatSessionsHaveSeparateJars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("chat"); err != nil {
			http.SetCookie(w, &http.Cookie{Name: "chat", Value: r.RemoteAddr + r.URL.RawQuery})
		}
		w.Write([]byte(`{"next_question": "hi", "next_field": "name"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	s1 := c.NewChatSession()
	s2 := c.NewChatSession()

	if _, err := s1.Message(context.Background(), nil, nil); err != nil {
		t.Fatalf("s1: %v", err)
	}
	if _, err := s2.Message(context.Background(), nil, nil); err != nil {
		t.Fatalf("s2: %v", err)
	}

	u := s1.client.http.Jar
	v := s2.client.http.Jar
	if u == v {
		t.Error("sessions share a cookie jar")
	}
	if c.http.Jar == u || c.http.Jar == v {
		t.Error("session jar aliases the base client jar")
	}
}

func TestFileURL(t *testing.T) {
	c := New("http://backend.test")
	tests := []struct{ in, want string }{
		{"", ""},
		{"media/team/ana.jpg", "http://backend.test/media/team/ana.jpg"},
		{"/media/team/ana.jpg", "http://backend.test/media/team/ana.jpg"},
		{"https://cdn.example.com/x.jpg", "https://cdn.example.com/x.jpg"},
	}
	for _, tt := range tests {
		if got := c.FileURL(tt.in); got != tt.want {
			t.Errorf("FileURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPublishedPostsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/blog_posts/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id": 1, "title": "Live", "slug": "live", "published": true},
			{"id": 2, "title": "Draft", "slug": "draft", "published": false}
		]`))
	}))
	defer srv.Close()

	posts, err := New(srv.URL).PublishedPosts(context.Background())
	if err != nil {
		t.Fatalf("PublishedPosts: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "live" {
		t.Errorf("posts = %+v, want only the published one", posts)
	}
}
