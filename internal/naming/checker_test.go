package naming

import (
	"testing"

	"github.com/danieljhkim/p4gate/internal/p4"
)

func matRules() *Rules {
	return NewRules(map[string]string{".mat": "Mat_"})
}

func TestCheckFile_MatRules(t *testing.T) {
	checker := NewChecker(matRules())

	tests := []struct {
		name      string
		path      string
		action    p4.FileAction
		wantBad   bool
		wantKind  Kind
		suggested string
	}{
		{name: "compliant", path: "//depot/art/Mat_Rock_v01.mat", action: p4.ActionAdd},
		{name: "missing prefix", path: "//depot/art/Rock_v01.mat", action: p4.ActionAdd, wantBad: true, wantKind: KindPrefix, suggested: "Mat_Rock_v01.mat"},
		{name: "missing suffix", path: "//depot/art/Mat_Rock.mat", action: p4.ActionEdit, wantBad: true, wantKind: KindSuffix, suggested: "Mat_Rock_v01.mat"},
		{name: "missing both", path: "//depot/art/Rock.mat", action: p4.ActionAdd, wantBad: true, wantKind: KindBoth, suggested: "Mat_Rock_v01.mat"},
		{name: "exempt prefix marker", path: "//depot/art/EXTN_Rock.mat", action: p4.ActionAdd},
		{name: "exempt suffix marker", path: "//depot/vendor_EXTN/Rock.mat", action: p4.ActionAdd},
		{name: "delete exempt", path: "//depot/art/Rock.mat", action: p4.ActionDelete},
		{name: "move/delete exempt", path: "//depot/art/Rock.mat", action: p4.ActionMoveDelete},
		{name: "purge exempt", path: "//depot/art/Rock.mat", action: p4.ActionPurge},
		{name: "single digit version", path: "//depot/art/Mat_Rock_v1.mat", action: p4.ActionAdd},
		{name: "three digit version", path: "//depot/art/Mat_Rock_v001.mat", action: p4.ActionAdd, wantBad: true, wantKind: KindSuffix, suggested: "Mat_Rock_v001_v01.mat"},
		{name: "extension case-insensitive", path: "//depot/art/Rock_v01.MAT", action: p4.ActionAdd, wantBad: true, wantKind: KindPrefix, suggested: "Mat_Rock_v01.MAT"},
		{name: "meta follows asset rule", path: "//depot/art/Rock.mat.meta", action: p4.ActionAdd, wantBad: true, wantKind: KindBoth, suggested: "Mat_Rock_v01.mat.meta"},
		{name: "meta compliant", path: "//depot/art/Mat_Rock_v02.mat.meta", action: p4.ActionAdd},
		{name: "no rule", path: "//depot/art/readme.txt", action: p4.ActionAdd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, bad := checker.CheckFile(tt.path, tt.action)
			if bad != tt.wantBad {
				t.Fatalf("CheckFile(%q) bad = %v, want %v (%+v)", tt.path, bad, tt.wantBad, v)
			}
			if !bad {
				return
			}
			if v.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", v.Kind, tt.wantKind)
			}
			if v.Suggested != tt.suggested {
				t.Errorf("Suggested = %q, want %q", v.Suggested, tt.suggested)
			}
			if v.DepotPath != tt.path {
				t.Errorf("DepotPath = %q, want %q", v.DepotPath, tt.path)
			}
		})
	}
}

func TestCheckFile_LongestExtensionWins(t *testing.T) {
	checker := NewChecker(NewRules(map[string]string{
		".meta":     "Meta_",
		".mat.meta": "MatMeta_",
	}))

	v, bad := checker.CheckFile("//depot/Rock_v01.mat.meta", p4.ActionAdd)
	if !bad {
		t.Fatal("expected violation")
	}
	if v.Ext != ".mat.meta" || v.Prefix != "MatMeta_" {
		t.Errorf("matched %q -> %q, want .mat.meta -> MatMeta_", v.Ext, v.Prefix)
	}
	if v.Suggested != "MatMeta_Rock_v01.mat.meta" {
		t.Errorf("Suggested = %q", v.Suggested)
	}
}

func TestCheck_PreservesEntryOrder(t *testing.T) {
	checker := NewChecker(matRules())
	entries := []p4.PendingEntry{
		{DepotPath: "//depot/Rock.mat", Action: p4.ActionAdd},
		{DepotPath: "//depot/Mat_Ok_v01.mat", Action: p4.ActionAdd},
		{DepotPath: "//depot/Gone.mat", Action: p4.ActionDelete},
		{DepotPath: "//depot/Stone_v03.mat", Action: p4.ActionEdit},
	}

	got := checker.Check(entries)
	if len(got) != 2 {
		t.Fatalf("got %d violations, want 2: %+v", len(got), got)
	}
	if got[0].FileName != "Rock.mat" || got[1].FileName != "Stone_v03.mat" {
		t.Errorf("order = %q, %q", got[0].FileName, got[1].FileName)
	}
}

func TestCheck_NoViolations(t *testing.T) {
	if got := NewChecker(matRules()).Check(nil); len(got) != 0 {
		t.Errorf("Check(nil) = %+v", got)
	}
}
