/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

var (
	errInvalidBody  = errors.New("request body must be a json object")
	errInvalidScore = errors.New("score must be an integer")
)

type statusMessage struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// drainErrors logs write failures reported by handlers until errs is closed.
func drainErrors(cfg *Config, errs <-chan error) {
	for err := range errs {
		logf(cfg, "ERROR: %v", err)
	}
}

func writeStatus(w http.ResponseWriter, code int, err error) (int, error) {
	msg := statusMessage{Status: "success"}
	if err != nil {
		msg = statusMessage{Status: "error", Error: err.Error()}
	}

	data, e := json.Marshal(msg)
	if e != nil {
		return 0, e
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	return w.Write(append(data, '\n'))
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, errInvalidBody), errors.Is(err, errInvalidScore):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func newPage(cfg *Config, title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon(cfg))
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"%s/\">%s</a></body></html>", cfg.prefix, body))

	return htmlBody.String()
}
