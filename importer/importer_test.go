package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/openstudydata/ddiwalk/config"
	"github.com/openstudydata/ddiwalk/ddixml"
	"github.com/openstudydata/ddiwalk/mapping"
	"github.com/openstudydata/ddiwalk/reconcile"
	"github.com/openstudydata/ddiwalk/registry"
)

const testDoc = `<codeBook xmlns="http://www.icpsr.umich.edu/DDI">
  <stdyDscr>
    <citation>
      <titlStmt>
        <titl>The Example Study</titl>
        <IDNo>EXS-2001</IDNo>
      </titlStmt>
      <rspStmt>
        <AuthEnty>Institute of Studies</AuthEnty>
      </rspStmt>
    </citation>
    <stdyInfo>
      <subject>
        <keyword>Health Care</keyword>
      </subject>
      <abstract>A study about things.</abstract>
    </stdyInfo>
  </stdyDscr>
</codeBook>`

func newImporter(t *testing.T, cfg *config.Config) (*Importer, *registry.Memory) {
	t.Helper()
	fields, err := mapping.DefaultFieldSet()
	if err != nil {
		t.Fatalf("DefaultFieldSet error: %v", err)
	}
	reg := registry.NewMemory()
	return New(fields, reg, cfg), reg
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "study.xml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test doc: %v", err)
	}
	return path
}

func TestRun_CreatesFromFile(t *testing.T) {
	imp, reg := newImporter(t, config.Default())
	path := writeDoc(t, testDoc)

	result, err := imp.Run(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Action != reconcile.ActionCreate {
		t.Fatalf("Action = %v, want create", result.Action)
	}
	if result.ID != "the-example-study" {
		t.Errorf("ID = %q, want 'the-example-study'", result.ID)
	}
	if reg.Len() != 1 {
		t.Errorf("registry holds %d records, want 1", reg.Len())
	}

	rec, err := reg.Show(context.Background(), "the-example-study")
	if err != nil {
		t.Fatalf("Show error: %v", err)
	}
	if rec.Title != "The Example Study" {
		t.Errorf("Title = %q, want 'The Example Study'", rec.Title)
	}
	if rec.Extras["id_number"] != "EXS-2001" {
		t.Errorf("extras id_number = %q, want 'EXS-2001'", rec.Extras["id_number"])
	}
	if len(rec.Tags) != 1 || rec.Tags[0].Name != "health-care" {
		t.Errorf("Tags = %v, want [health-care]", rec.Tags)
	}
	if len(rec.Resources) != 0 {
		t.Errorf("Resources = %v, want none for a file source", rec.Resources)
	}
}

func TestRun_RejectsDuplicate(t *testing.T) {
	imp, _ := newImporter(t, config.Default())
	path := writeDoc(t, testDoc)
	ctx := context.Background()

	if _, err := imp.Run(ctx, path, Options{}); err != nil {
		t.Fatalf("first Run error: %v", err)
	}

	result, err := imp.Run(ctx, path, Options{})
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if result.Action != reconcile.ActionReject {
		t.Fatalf("Action = %v, want reject", result.Action)
	}
	if result.Reason != "duplicate" {
		t.Errorf("Reason = %q, want 'duplicate'", result.Reason)
	}
}

func TestRun_OverrideUpdates(t *testing.T) {
	cfg := config.Default()
	imp, reg := newImporter(t, cfg)
	path := writeDoc(t, testDoc)
	ctx := context.Background()

	if _, err := imp.Run(ctx, path, Options{}); err != nil {
		t.Fatalf("first Run error: %v", err)
	}

	cfg.OverrideExisting = true
	result, err := imp.Run(ctx, path, Options{License: "cc-by"})
	if err != nil {
		t.Fatalf("second Run error: %v", err)
	}
	if result.Action != reconcile.ActionUpdate {
		t.Fatalf("Action = %v, want update", result.Action)
	}

	rec, err := reg.Show(ctx, "the-example-study")
	if err != nil {
		t.Fatalf("Show error: %v", err)
	}
	if rec.LicenseID != "cc-by" {
		t.Errorf("LicenseID = %q, want 'cc-by'", rec.LicenseID)
	}
	if reg.Len() != 1 {
		t.Errorf("registry holds %d records, want 1", reg.Len())
	}
}

func TestRun_FetchesFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ddibrowser/123/export" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(testDoc))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.SourceURLFallback = true
	cfg.CatalogPathOld = "/ddibrowser/"
	cfg.CatalogPathNew = "/catalog/"
	imp, reg := newImporter(t, cfg)

	source := srv.URL + "/ddibrowser/123/export"
	result, err := imp.Run(context.Background(), source, Options{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Action != reconcile.ActionCreate {
		t.Fatalf("Action = %v, want create", result.Action)
	}

	rec, err := reg.Show(context.Background(), "the-example-study")
	if err != nil {
		t.Fatalf("Show error: %v", err)
	}
	if rec.URL != source {
		t.Errorf("URL = %q, want the source URL", rec.URL)
	}
	if len(rec.Resources) != 2 {
		t.Fatalf("Resources = %v, want source + catalog entry", rec.Resources)
	}
	if rec.Resources[0].URL != source || rec.Resources[0].Format != "xml" {
		t.Errorf("Resources[0] = %+v, want the source document", rec.Resources[0])
	}
	if want := srv.URL + "/catalog/123/export"; rec.Resources[1].URL != want {
		t.Errorf("Resources[1].URL = %q, want %q", rec.Resources[1].URL, want)
	}
}

func TestRun_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	imp, reg := newImporter(t, config.Default())
	ctx := context.Background()

	_, err := imp.Run(ctx, srv.URL+"/broken", Options{})
	if !errors.Is(err, ErrContentFetch) {
		t.Errorf("error = %v, want ErrContentFetch", err)
	}

	_, err = imp.Run(ctx, filepath.Join(t.TempDir(), "missing.xml"), Options{})
	if !errors.Is(err, ErrContentFetch) {
		t.Errorf("error = %v, want ErrContentFetch", err)
	}

	if reg.Len() != 0 {
		t.Errorf("registry holds %d records, want 0 after failed imports", reg.Len())
	}
}

func TestRun_MalformedDocument(t *testing.T) {
	imp, reg := newImporter(t, config.Default())
	path := writeDoc(t, "<codeBook><unclosed></codeBook>")

	_, err := imp.Run(context.Background(), path, Options{})
	if !errors.Is(err, ddixml.ErrMetadataFormat) {
		t.Errorf("error = %v, want ErrMetadataFormat", err)
	}
	if reg.Len() != 0 {
		t.Errorf("registry holds %d records, want 0", reg.Len())
	}
}

func TestLoad_DoesNotTouchRegistry(t *testing.T) {
	imp, reg := newImporter(t, config.Default())
	path := writeDoc(t, testDoc)

	rec, err := imp.Load(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if rec.Name != "the-example-study" {
		t.Errorf("Name = %q, want 'the-example-study'", rec.Name)
	}
	if reg.Len() != 0 {
		t.Errorf("registry holds %d records, want 0", reg.Len())
	}
}
