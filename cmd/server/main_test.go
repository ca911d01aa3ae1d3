package main

import "testing"

func TestIsWeakSecret(t *testing.T) {
	cases := map[string]bool{
		"":                                     true,
		"short":                                true,
		"change-me-change-me-change-me-1234":   true,
		"Your-Secret-Key-0123456789abcdefghij": true,
		"9f8a7c6b5e4d3c2b1a0f9e8d7c6b5a4f3e2d": false,
	}
	for secret, want := range cases {
		if got := isWeakSecret(secret); got != want {
			t.Fatalf("isWeakSecret(%q) want %v got %v", secret, want, got)
		}
	}
}
