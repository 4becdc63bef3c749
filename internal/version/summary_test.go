package version_test

import (
	"strings"
	"testing"

	"ian.app/engine/internal/version"
)

func TestExtractChangelogSummary(t *testing.T) {
	tests := []struct {
		name      string
		changelog string
		want      string
	}{
		{
			name:      "version heading title",
			changelog: "## Version 2 - Refund support\n\nAdded refund handling.",
			want:      "Refund support",
		},
		{
			name:      "version heading with extra spacing",
			changelog: "##  Version 12  -  Large rework\nbody",
			want:      "Large rework",
		},
		{
			name:      "first non-heading line when no version heading",
			changelog: "# Changelog\n\nReworked the checkout flow.\nMore detail here.",
			want:      "Reworked the checkout flow.",
		},
		{
			name:      "long first line truncated to 100 characters",
			changelog: strings.Repeat("x", 150),
			want:      strings.Repeat("x", 100),
		},
		{
			name:      "truncation never splits a multi-byte rune",
			changelog: strings.Repeat("x", 99) + strings.Repeat("é", 30),
			want:      strings.Repeat("x", 99),
		},
		{
			name:      "only headings falls back to default",
			changelog: "# One\n## Two",
			want:      "Changes made",
		},
		{
			name:      "empty changelog falls back to default",
			changelog: "",
			want:      "Changes made",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := version.ExtractChangelogSummary(tt.changelog)
			if got != tt.want {
				t.Errorf("ExtractChangelogSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}
