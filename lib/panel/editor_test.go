// Copyright 2026 The Devpanel Authors
// SPDX-License-Identifier: Apache-2.0

package panel

import (
	"errors"
	"testing"
)

func TestResolveEditor(t *testing.T) {
	env := func(values map[string]string) func(string) string {
		return func(key string) string { return values[key] }
	}
	onPath := func(available ...string) func(string) (string, error) {
		set := make(map[string]bool)
		for _, name := range available {
			set[name] = true
		}
		return func(name string) (string, error) {
			if set[name] {
				return "/usr/bin/" + name, nil
			}
			return "", errors.New("not found")
		}
	}

	tests := []struct {
		name     string
		env      map[string]string
		path     []string
		want     string
	}{
		{
			name: "VISUAL wins",
			env:  map[string]string{"VISUAL": "code --wait", "EDITOR": "vim"},
			path: []string{"nvim", "vim"},
			want: "code --wait",
		},
		{
			name: "EDITOR second",
			env:  map[string]string{"EDITOR": "emacs"},
			path: []string{"nvim"},
			want: "emacs",
		},
		{
			name: "whitespace-only VISUAL ignored",
			env:  map[string]string{"VISUAL": "   ", "EDITOR": "vim"},
			want: "vim",
		},
		{
			name: "fallback order",
			env:  nil,
			path: []string{"vim", "nano"},
			want: "vim",
		},
		{
			name: "later fallback",
			env:  nil,
			path: []string{"nano", "less"},
			want: "nano",
		},
		{
			name: "nothing available",
			env:  nil,
			path: nil,
			want: "vi",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveEditor(env(tt.env), onPath(tt.path...))
			if got != tt.want {
				t.Errorf("ResolveEditor = %q, want %q", got, tt.want)
			}
		})
	}
}
