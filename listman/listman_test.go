package listman

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/xpertai/sitekit/backend"
)

func testDef() Definition {
	return Definition{
		Name:     "team",
		Resource: "team",
		Title:    "Team Members",
		Singular: "team member",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: Text, Required: true},
			{Name: "description", Label: "Role", Kind: Textarea},
			{Name: "image", Label: "Photo", Kind: File},
			{Name: "order", Label: "Order", Kind: Number},
		},
	}
}

func TestAddAndEditAreMutuallyExclusive(t *testing.T) {
	m := New(testDef())
	m.SetItems([]backend.ContentItem{{ID: 1, Name: "Ada"}})

	m.StartAdd()
	if m.Mode() != Adding {
		t.Fatalf("mode = %v, want Adding", m.Mode())
	}

	if !m.StartEdit(1) {
		t.Fatal("StartEdit(1) = false, want true")
	}
	if m.Mode() != Editing {
		t.Fatalf("mode = %v, want Editing; starting an edit must cancel the add", m.Mode())
	}

	m.StartAdd()
	if m.Mode() != Adding {
		t.Fatalf("mode = %v, want Adding", m.Mode())
	}
	if _, editing := m.Editing(); editing {
		t.Error("starting an add must discard the in-progress edit")
	}
}

func TestStartEditUnknownID(t *testing.T) {
	m := New(testDef())
	m.SetItems([]backend.ContentItem{{ID: 1, Name: "Ada"}})
	if m.StartEdit(99) {
		t.Error("StartEdit(99) = true for an id not in the collection")
	}
	if m.Mode() != Viewing {
		t.Errorf("mode = %v, want Viewing after failed StartEdit", m.Mode())
	}
}

func TestNilCollectionIsEmptyList(t *testing.T) {
	m := New(testDef())
	m.SetItems(nil)
	if items := m.Items(); items == nil || len(items) != 0 {
		t.Errorf("Items() = %v, want empty non-nil slice", items)
	}
}

func TestReloadDropsVanishedEdit(t *testing.T) {
	m := New(testDef())
	m.SetItems([]backend.ContentItem{{ID: 1, Name: "Ada"}, {ID: 2, Name: "Grace"}})
	m.StartEdit(2)

	// Item 2 deleted by another admin between reloads.
	m.SetItems([]backend.ContentItem{{ID: 1, Name: "Ada"}})
	if m.Mode() != Viewing {
		t.Errorf("mode = %v, want Viewing after edited item vanished", m.Mode())
	}

	// A reload that keeps the item keeps the edit.
	m.StartEdit(1)
	m.SetItems([]backend.ContentItem{{ID: 1, Name: "Ada B."}})
	if m.Mode() != Editing {
		t.Errorf("mode = %v, want Editing to survive a reload that kept the item", m.Mode())
	}
}

func TestFormValuesPrefill(t *testing.T) {
	m := New(testDef())
	m.SetItems([]backend.ContentItem{{ID: 3, Name: "Ada", Description: "Engineer", Image: "ada.jpg", Order: 2}})

	vals := m.FormValues()
	for k, v := range vals {
		if v != "" {
			t.Errorf("Viewing prefill %s = %q, want blank", k, v)
		}
	}

	m.StartEdit(3)
	vals = m.FormValues()
	want := map[string]string{"name": "Ada", "description": "Engineer", "image": "ada.jpg", "order": "2"}
	for k, v := range want {
		if vals[k] != v {
			t.Errorf("Editing prefill %s = %q, want %q", k, vals[k], v)
		}
	}
}

func TestSaveRoutesCreateVsUpdate(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	client := backend.New(srv.URL)

	posted := url.Values{"name": {"Ada"}}

	m := New(testDef())
	m.StartAdd()
	if err := m.Save(context.Background(), client, posted, nil); err != nil {
		t.Fatalf("Save (adding): %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/team/" {
		t.Errorf("adding save = %s %s, want POST /api/team/", gotMethod, gotPath)
	}
	if m.Mode() != Viewing {
		t.Errorf("mode = %v after successful save, want Viewing", m.Mode())
	}

	m.SetItems([]backend.ContentItem{{ID: 7, Name: "Ada"}})
	m.StartEdit(7)
	if err := m.Save(context.Background(), client, posted, nil); err != nil {
		t.Fatalf("Save (editing): %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/team/7/" {
		t.Errorf("editing save = %s %s, want PUT /api/team/7/", gotMethod, gotPath)
	}
}

func TestSaveWhileViewing(t *testing.T) {
	m := New(testDef())
	err := m.Save(context.Background(), backend.New("http://unused.test"), url.Values{}, nil)
	if err != ErrNotEditing {
		t.Errorf("Save in Viewing = %v, want ErrNotEditing", err)
	}
}

func TestSaveFailureKeepsFormOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "name is required"}`))
	}))
	defer srv.Close()

	m := New(testDef())
	m.StartAdd()
	if err := m.Save(context.Background(), backend.New(srv.URL), url.Values{}, nil); err == nil {
		t.Fatal("expected save error")
	}
	if m.Mode() != Adding {
		t.Errorf("mode = %v after failed save, want Adding so the operator can retry", m.Mode())
	}
}

func TestSaveSerializesUploads(t *testing.T) {
	var hadFile bool
	var filename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if fhs := r.MultipartForm.File["image"]; len(fhs) == 1 {
			hadFile = true
			filename = fhs[0].Filename
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m := New(testDef())
	m.StartAdd()
	uploads := map[string]Upload{
		"image": {Filename: "ada.jpg", Reader: strings.NewReader("jpegbytes")},
	}
	if err := m.Save(context.Background(), backend.New(srv.URL), url.Values{"name": {"Ada"}}, uploads); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !hadFile || filename != "ada.jpg" {
		t.Errorf("file part missing or misnamed: had=%v name=%q", hadFile, filename)
	}
}

func TestMissingRequiredFields(t *testing.T) {
	def := testDef()
	def.Fields = append(def.Fields, Field{Name: "resume", Label: "Resume", Kind: File, Required: true})
	m := New(def)

	missing := m.Missing(url.Values{"description": {"x"}})
	if len(missing) != 1 || missing[0] != "Name" {
		t.Errorf("Missing = %v, want [Name]; file fields are excluded from the posted-value check", missing)
	}
	if got := m.Missing(url.Values{"name": {"Ada"}}); len(got) != 0 {
		t.Errorf("Missing = %v, want none", got)
	}
}

func TestEmbeddedDefinitionsLoad(t *testing.T) {
	defs, err := Definitions()
	if err != nil {
		t.Fatalf("Definitions: %v", err)
	}
	if len(defs) == 0 {
		t.Fatal("no embedded definitions")
	}
	for _, name := range []string{"team", "features", "benefits", "job_postings", "downloads", "solutions"} {
		def, ok := Get(name)
		if !ok {
			t.Errorf("Get(%q) missing", name)
			continue
		}
		if def.Resource == "" || len(def.Fields) == 0 {
			t.Errorf("definition %q incomplete: %+v", name, def)
		}
	}
	if _, ok := Get("nope"); ok {
		t.Error("Get of unknown list should report false")
	}
}
