package tui

import (
	"fmt"
	"testing"

	domain "github.com/gigtune/gigtune/internal/model"
	"github.com/gigtune/gigtune/internal/session"
	"github.com/gigtune/gigtune/internal/syncstore"
)

func TestFilterLabel(t *testing.T) {
	tests := []struct {
		name string
		in   syncstore.FilterState
		want string
	}{
		{"empty", syncstore.FilterState{}, ""},
		{"blank query", syncstore.FilterState{Query: "   "}, ""},
		{"query", syncstore.FilterState{Query: "ana"}, "[/ana]"},
		{
			"all",
			syncstore.FilterState{
				Query:       "b",
				Instruments: []domain.Instrument{domain.Drums},
				Genres:      []domain.Genre{domain.Jazz, domain.Funk},
			},
			"[/b Drums Jazz Funk]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterLabel(tt.in); got != tt.want {
				t.Errorf("filterLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: x@y", session.ErrUnknownEmail), "No musician is registered with that email."},
		{fmt.Errorf("%w: dial", session.ErrRosterUnavailable), "Could not reach GigTune. Try again in a moment."},
		{fmt.Errorf("%w: email is required", domain.ErrInvalidInput), "Please enter your email."},
		{fmt.Errorf("boom"), "boom"},
	}
	for _, tt := range tests {
		if got := loginError(tt.err); got != tt.want {
			t.Errorf("loginError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
