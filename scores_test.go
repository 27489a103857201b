package main

import (
	"errors"
	"math"
	"testing"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr error
	}{
		{name: "integer", body: `{"score": 7}`, want: 7},
		{name: "negative", body: `{"score": -5}`, want: -5},
		{name: "missing field", body: `{}`, want: 0},
		{name: "other fields only", body: `{"name": "rex"}`, want: 0},
		{name: "numeric string", body: `{"score": "42"}`, want: 42},
		{name: "padded numeric string", body: `{"score": " 42 "}`, want: 42},
		{name: "signed string", body: `{"score": "-3"}`, want: -3},
		{name: "float truncates", body: `{"score": 3.9}`, want: 3},
		{name: "negative float truncates toward zero", body: `{"score": -2.5}`, want: -2},
		{name: "integer above float precision", body: `{"score": 9007199254740993}`, want: 9007199254740993},
		{name: "max int64", body: `{"score": 9223372036854775807}`, want: math.MaxInt64},
		{name: "exponent integer", body: `{"score": 1e3}`, want: 1000},
		{name: "too large", body: `{"score": 1e20}`, wantErr: errInvalidScore},
		{name: "too small", body: `{"score": -1e300}`, wantErr: errInvalidScore},
		{name: "just past int64", body: `{"score": 9223372036854775808}`, wantErr: errInvalidScore},
		{name: "trailing garbage", body: `{"score": 1} x`, wantErr: errInvalidBody},
		{name: "true", body: `{"score": true}`, want: 1},
		{name: "false", body: `{"score": false}`, want: 0},
		{name: "null", body: `{"score": null}`, wantErr: errInvalidScore},
		{name: "word", body: `{"score": "lots"}`, wantErr: errInvalidScore},
		{name: "decimal string", body: `{"score": "4.5"}`, wantErr: errInvalidScore},
		{name: "array", body: `{"score": [1]}`, wantErr: errInvalidScore},
		{name: "object", body: `{"score": {"value": 1}}`, wantErr: errInvalidScore},
		{name: "empty body", body: ``, wantErr: errInvalidBody},
		{name: "not json", body: `score=7`, wantErr: errInvalidBody},
		{name: "json array body", body: `[7]`, wantErr: errInvalidBody},
		{name: "json null body", body: `null`, wantErr: errInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore([]byte(tt.body))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseScore(%q) error = %v, want %v", tt.body, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("parseScore(%q) unexpected error: %v", tt.body, err)
			}
			if got != tt.want {
				t.Errorf("parseScore(%q) = %d, want %d", tt.body, got, tt.want)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 200},
		{"invalid body", errInvalidBody, 400},
		{"invalid score", errInvalidScore, 400},
		{"wrapped invalid score", coerceErr(t), 400},
		{"write failure", errors.New("disk full"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func coerceErr(t *testing.T) error {
	t.Helper()

	_, err := coerceScore(nil)
	if err == nil {
		t.Fatal("coerceScore(nil) succeeded, want error")
	}

	return err
}
