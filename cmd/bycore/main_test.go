package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRewriteDirectNoteLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"bycore"},
			want: []string{"bycore"},
		},
		{
			name: "direct note id first token",
			in:   []string{"bycore", "1718000000000"},
			want: []string{"bycore", "notes", "show", "1718000000000"},
		},
		{
			name: "direct note id after value flag",
			in:   []string{"bycore", "--dir", "./tmp-data", "1718000000000"},
			want: []string{"bycore", "--dir", "./tmp-data", "notes", "show", "1718000000000"},
		},
		{
			name: "direct note id after equals flag",
			in:   []string{"bycore", "--dir=./tmp-data", "1718000000000"},
			want: []string{"bycore", "--dir=./tmp-data", "notes", "show", "1718000000000"},
		},
		{
			name: "direct note id after bool flag",
			in:   []string{"bycore", "--pretty", "1718000000000"},
			want: []string{"bycore", "--pretty", "notes", "show", "1718000000000"},
		},
		{
			name: "direct note id after double dash",
			in:   []string{"bycore", "--dir", "./tmp-data", "--", "1718000000000"},
			want: []string{"bycore", "--dir", "./tmp-data", "--", "notes", "show", "1718000000000"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"bycore", "notes", "show", "1718000000000"},
			want: []string{"bycore", "notes", "show", "1718000000000"},
		},
		{
			name: "short number not rewritten",
			in:   []string{"bycore", "42"},
			want: []string{"bycore", "42"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"bycore", "wat"},
			want: []string{"bycore", "wat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectNoteLookupArgs(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("rewriteDirectNoteLookupArgs (-want +got):\n%s", diff)
			}
		})
	}
}
