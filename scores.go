/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/spf13/cast"
)

// parseScore extracts the "score" field from a save request body.
// A missing field counts as 0.
func parseScore(body []byte) (int, error) {
	var req map[string]any

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	err := dec.Decode(&req)
	if err != nil || req == nil {
		return 0, errInvalidBody
	}

	if _, err := dec.Token(); err != io.EOF {
		return 0, errInvalidBody
	}

	value, ok := req["score"]
	if !ok {
		return 0, nil
	}

	return coerceScore(value)
}

// coerceScore converts a decoded json value into an int, following the same
// rules as integer conversion of a loosely typed form value: numbers are
// truncated, numeric strings are parsed and booleans become 1 or 0.
func coerceScore(value any) (int, error) {
	switch v := value.(type) {
	case nil, map[string]any, []any:
		return 0, fmt.Errorf("%w: got %s", errInvalidScore, jsonKind(v))
	case string:
		score, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errInvalidScore, v)
		}

		return score, nil
	case json.Number:
		return numberToInt(v)
	}

	score, err := cast.ToIntE(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errInvalidScore, value)
	}

	return score, nil
}

// numberToInt keeps integral numbers exact and truncates fractional ones,
// rejecting anything outside the range of int.
func numberToInt(n json.Number) (int, error) {
	if i, err := strconv.ParseInt(n.String(), 10, strconv.IntSize); err == nil {
		return int(i), nil
	}

	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errInvalidScore, n)
	}

	f = math.Trunc(f)
	if f < math.MinInt || f >= -math.MinInt {
		return 0, fmt.Errorf("%w: %s is out of range", errInvalidScore, n)
	}

	return int(f), nil
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func serveSaveScore(cfg *Config, store ScoreStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		securityHeaders(cfg, w)

		body, err := io.ReadAll(r.Body)
		if err != nil {
			err = fmt.Errorf("%w: %v", errInvalidBody, err)
		}

		var (
			score  int
			scores []int
		)

		if err == nil {
			score, err = parseScore(body)
		}

		if err == nil {
			scores, err = store.Append(score)
		}

		if err != nil {
			logf(cfg, "SCORE: Rejected score from %s: %v", realIP(r), err)

			_, werr := writeStatus(w, statusFor(err), err)
			if werr != nil {
				errs <- werr
			}

			return
		}

		_, err = writeStatus(w, http.StatusOK, nil)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SCORE: Saved %d from %s (%d total) in %s",
			score,
			realIP(r),
			len(scores),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveScoreList(cfg *Config, store ScoreStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		data, err := json.Marshal(store.Load())
		if err != nil {
			errs <- err

			return
		}
		data = append(data, '\n')

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		written, err := w.Write(data)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Score list (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
