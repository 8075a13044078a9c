package target

import (
	"testing"

	"github.com/nabshq/nabs/pkg/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"AlreadyClean", "a/b/c", "a/b/c", false},
		{"ParentInMiddle", "a/b/../c", "a/c", false},
		{"CurrentDir", "a/./b", "a/b", false},
		{"LeadingCurrent", "./a/b", "a/b", false},
		{"PopToRoot", "a/..", "", false},
		{"EscapeAboveRoot", "a/../../b", "", true},
		{"EscapeImmediately", "../b", "", true},
		{"MixedDeep", "libs/x/../y", "libs/y", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tt.in, got)
				}
				if !errors.Is(err, errors.ErrCodePathEscapes) {
					t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodePathEscapes)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestManifestPathIsAbsolute(t *testing.T) {
	if !NewManifestPath("/yours/ha/", Posix).IsAbsolute() {
		t.Error("posix absolute path not detected")
	}
	if NewManifestPath("../serde", Posix).IsAbsolute() {
		t.Error("relative path flagged absolute")
	}
}
