// Package importer runs the whole pipeline for one source document:
// fetch, parse, extract, normalize, reconcile, persist.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openstudydata/ddiwalk/config"
	"github.com/openstudydata/ddiwalk/ddixml"
	"github.com/openstudydata/ddiwalk/mapping"
	"github.com/openstudydata/ddiwalk/reconcile"
	"github.com/openstudydata/ddiwalk/record"
	"github.com/openstudydata/ddiwalk/registry"
)

// ErrContentFetch indicates the source document could not be retrieved.
var ErrContentFetch = errors.New("fetching source document")

// Result reports what one import did.
type Result struct {
	Action reconcile.Action
	ID     string
	Reason string
}

// Options are per-call settings for one import.
type Options struct {
	// License overrides the extracted and configured license.
	License string
}

// Importer wires the pipeline together. Fields must be built before
// concurrent use and is read-only afterward.
type Importer struct {
	Fields     *mapping.FieldSet
	Registry   registry.Registry
	Config     *config.Config
	HTTPClient *http.Client
}

// New creates an Importer with a timeout-configured fetch client.
func New(fields *mapping.FieldSet, reg registry.Registry, cfg *config.Config) *Importer {
	return &Importer{
		Fields:   fields,
		Registry: reg,
		Config:   cfg,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Run imports one document, given as a file path or an http(s) URL, and
// executes the reconciliation outcome against the registry. A failed
// import leaves the catalog untouched.
func (imp *Importer) Run(ctx context.Context, source string, opts Options) (*Result, error) {
	rec, err := imp.Load(ctx, source, opts)
	if err != nil {
		return nil, err
	}

	engine := &reconcile.Engine{
		Registry: imp.Registry,
		Policy: reconcile.Policy{
			AllowDuplicates:  imp.Config.AllowDuplicates,
			OverrideExisting: imp.Config.OverrideExisting,
		},
	}
	outcome, err := engine.Reconcile(ctx, rec)
	if err != nil {
		return nil, err
	}

	switch outcome.Action {
	case reconcile.ActionCreate:
		id, err := imp.Registry.Create(ctx, outcome.Record)
		if err != nil {
			return nil, fmt.Errorf("creating record %q: %w", outcome.Record.Name, err)
		}
		slog.Info("record created", "id", id, "name", outcome.Record.Name)
		return &Result{Action: outcome.Action, ID: id}, nil
	case reconcile.ActionUpdate:
		id, err := imp.Registry.Update(ctx, outcome.Record)
		if err != nil {
			return nil, fmt.Errorf("updating record %q: %w", outcome.Record.Name, err)
		}
		slog.Info("record updated", "id", id, "name", outcome.Record.Name)
		return &Result{Action: outcome.Action, ID: id}, nil
	default:
		slog.Info("record rejected", "name", rec.Name, "reason", outcome.Reason)
		return &Result{Action: outcome.Action, Reason: outcome.Reason}, nil
	}
}

// Load fetches, parses, extracts, and normalizes one document without
// touching the registry.
func (imp *Importer) Load(ctx context.Context, source string, opts Options) (*record.Record, error) {
	data, sourceURL, err := imp.fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	docCtx, err := ddixml.ParseFromURL(data, sourceURL)
	if err != nil {
		return nil, err
	}

	canonical := record.Canonical(imp.Fields.ExtractAll(docCtx))

	var rewrite *record.PathRewrite
	if imp.Config.CatalogPathOld != "" {
		rewrite = &record.PathRewrite{
			Old: imp.Config.CatalogPathOld,
			New: imp.Config.CatalogPathNew,
		}
	}
	return record.Normalize(canonical, record.Options{
		SourceURL:         docCtx.SourceURL(),
		SourceURLFallback: imp.Config.SourceURLFallback,
		License:           opts.License,
		DefaultLicense:    imp.Config.DefaultLicense,
		CatalogRewrite:    rewrite,
	}), nil
}

// fetch retrieves the document bytes. The returned URL is empty for file
// sources.
func (imp *Importer) fetch(ctx context.Context, source string) ([]byte, string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrContentFetch, err)
		}
		resp, err := imp.HTTPClient.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrContentFetch, err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, "", fmt.Errorf("%w: %s returned status %d", ErrContentFetch, source, resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrContentFetch, err)
		}
		slog.Debug("fetched source document", "url", source, "bytes", len(data))
		return data, source, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrContentFetch, err)
	}
	return data, "", nil
}
