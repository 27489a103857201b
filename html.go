/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

//go:embed assets/*
var assets embed.FS

//go:embed templates/*.html
var templateFiles embed.FS

type pageData struct {
	Prefix  string
	Favicon template.HTML
	Version string
	Scores  []int
}

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFiles, "templates/*.html")
}

func newPageData(cfg *Config) pageData {
	return pageData{
		Prefix:  cfg.prefix,
		Favicon: template.HTML(getFavicon(cfg)),
		Version: releaseVersion,
	}
}

// renderPage executes the named template into a buffer first, so a template
// failure never leaves a half-written page behind.
func renderPage(cfg *Config, tmpl *template.Template, name, label string, data pageData, w http.ResponseWriter, r *http.Request, errs chan<- error) {
	startTime := time.Now()

	var buf bytes.Buffer

	err := tmpl.ExecuteTemplate(&buf, name, data)
	if err != nil {
		errs <- err

		serveServerError(cfg, w)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	securityHeaders(cfg, w)

	written, err := w.Write(buf.Bytes())
	if err != nil {
		errs <- err

		return
	}

	logf(cfg, "SERVE: %s (%s) to %s in %s",
		label,
		humanReadableSize(int64(written)),
		realIP(r),
		time.Since(startTime).Round(time.Microsecond),
	)
}

func serveStartPage(cfg *Config, tmpl *template.Template, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		renderPage(cfg, tmpl, "start.html", "Start page", newPageData(cfg), w, r, errs)
	}
}

func serveGamePage(cfg *Config, tmpl *template.Template, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		renderPage(cfg, tmpl, "game.html", "Game page", newPageData(cfg), w, r, errs)
	}
}

func serveScoresPage(cfg *Config, tmpl *template.Template, store ScoreStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data := newPageData(cfg)
		data.Scores = store.Load()

		w.Header().Set("Cache-Control", "no-store")

		renderPage(cfg, tmpl, "scores.html", "Score history", data, w, r, errs)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveAssets(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		fname := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, cfg.prefix), "/")

		data, err := assets.ReadFile(fname)
		if err != nil {
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		switch strings.ToLower(filepath.Ext(fname)) {
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case ".js":
			w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		}

		_, err = w.Write(data)
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: ` + cfg.prefix + `/save_score
Disallow: ` + cfg.prefix + `/scores/ws

User-agent: GPTBot
Disallow: /

User-agent: CCBot
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
