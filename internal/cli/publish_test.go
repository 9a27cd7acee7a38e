package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sitectl/sitectl/internal/errors"
)

func TestRunPublish(t *testing.T) {
	tests := []struct {
		name      string
		staged    bool
		isRoot    bool
		wantErr   bool
		wantErrIs error
	}{
		{name: "publishes staged config", staged: true, isRoot: true},
		{name: "fails without staged config", staged: false, isRoot: true,
			wantErr: true, wantErrIs: errors.ErrNotStaged},
		{name: "requires root", staged: true, isRoot: false,
			wantErr: true, wantErrIs: errors.ErrRootRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTestHelper(t, t.TempDir())
			h.SetRootAccess(tt.isRoot)
			if tt.staged {
				if err := os.MkdirAll(h.Settings.StagingDir, 0o755); err != nil {
					t.Fatal(err)
				}
				writeFileT(t, filepath.Join(h.Settings.StagingDir, "example.com.conf"),
					"server { server_name example.com; }")
			}

			err := runPublish(publishCmd, []string{"example.com"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.wantErrIs != nil && !errors.Is(err, tt.wantErrIs) {
					t.Fatalf("error = %v, want %v", err, tt.wantErrIs)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			published := filepath.Join(h.Settings.SitesAvailable, "example.com")
			if _, err := os.Stat(published); err != nil {
				t.Error("published config missing")
			}
		})
	}
}
