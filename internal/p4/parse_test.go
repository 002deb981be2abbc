package p4

import (
	"errors"
	"strings"
	"testing"
)

const pendingDescribe = `... change 1234
... user alice
... client alice-ws
... time 1760000000
... desc Update rock materials
and textures

... status pending
... changeType public
... depotFile0 //depot/Game/Assets/Mat_Rock_v01.mat
... action0 edit
... type0 text
... rev0 3
... depotFile1 //depot/Game/Assets/Rock_v02.png
... action1 add
... type1 binary+l
... rev1 none
... depotFile2 //depot/Game/场景/Tree_v01.fbx
... action2 move/add
... type2 binary
... rev2 1
`

func TestParseDescription(t *testing.T) {
	desc, err := ParseDescription(pendingDescribe)
	if err != nil {
		t.Fatalf("ParseDescription error = %v", err)
	}

	if desc.ID != "1234" || desc.User != "alice" || desc.Client != "alice-ws" || desc.Status != "pending" {
		t.Errorf("unexpected header: %+v", desc)
	}
	if desc.Description != "Update rock materials\nand textures" {
		t.Errorf("Description = %q", desc.Description)
	}

	want := []PendingEntry{
		{DepotPath: "//depot/Game/Assets/Mat_Rock_v01.mat", Action: ActionEdit, Rev: "3", Type: "text"},
		{DepotPath: "//depot/Game/Assets/Rock_v02.png", Action: ActionAdd, Rev: "none", Type: "binary+l"},
		{DepotPath: "//depot/Game/场景/Tree_v01.fbx", Action: ActionMoveAdd, Rev: "1", Type: "binary"},
	}
	if len(desc.Entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(desc.Entries), len(want), desc.Entries)
	}
	for i := range want {
		if desc.Entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, desc.Entries[i], want[i])
		}
	}
	if len(desc.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", desc.Warnings)
	}
}

func TestParseDescription_IndexOrderIsNumeric(t *testing.T) {
	var b strings.Builder
	b.WriteString("... change 7\n")
	for _, i := range []string{"10", "2", "1"} {
		b.WriteString("... depotFile" + i + " //depot/f" + i + "\n")
		b.WriteString("... action" + i + " add\n")
	}

	desc, err := ParseDescription(b.String())
	if err != nil {
		t.Fatalf("ParseDescription error = %v", err)
	}
	got := []string{desc.Entries[0].DepotPath, desc.Entries[1].DepotPath, desc.Entries[2].DepotPath}
	want := []string{"//depot/f1", "//depot/f2", "//depot/f10"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order = %v, want %v", got, want)
			break
		}
	}
}

func TestParseDescription_Tolerance(t *testing.T) {
	tests := []struct {
		name         string
		out          string
		wantEntries  int
		wantWarnings int
	}{
		{
			name:         "empty pending change",
			out:          "... change 55\n... status pending\n",
			wantEntries:  0,
			wantWarnings: 0,
		},
		{
			name:         "depot file with revision suffix",
			out:          "... change 55\n... depotFile0 //depot/a.txt#4\n... action0 edit\n",
			wantEntries:  1,
			wantWarnings: 0,
		},
		{
			name:         "depot file without action",
			out:          "... change 55\n... depotFile0 //depot/a.txt\n... depotFile1 //depot/b.txt\n... action1 add\n",
			wantEntries:  1,
			wantWarnings: 1,
		},
		{
			name:         "action without depot file",
			out:          "... change 55\n... action0 add\n",
			wantEntries:  0,
			wantWarnings: 1,
		},
		{
			name:         "duplicate indexed tag keeps first",
			out:          "... change 55\n... depotFile0 //depot/a.txt\n... depotFile0 //depot/z.txt\n... action0 add\n",
			wantEntries:  1,
			wantWarnings: 1,
		},
		{
			name:         "duplicate depot path across indices is kept",
			out:          "... change 55\n... depotFile0 //depot/a.txt\n... action0 add\n... depotFile1 //depot/a.txt\n... action1 add\n",
			wantEntries:  2,
			wantWarnings: 0,
		},
		{
			name:         "jobs are not entries",
			out:          "... change 55\n... job0 JOB-1\n... jobstat0 open\n",
			wantEntries:  0,
			wantWarnings: 0,
		},
		{
			name:         "windows line endings",
			out:          "... change 55\r\n... depotFile0 //depot/a.txt\r\n... action0 add\r\n",
			wantEntries:  1,
			wantWarnings: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := ParseDescription(tt.out)
			if err != nil {
				t.Fatalf("ParseDescription error = %v", err)
			}
			if len(desc.Entries) != tt.wantEntries {
				t.Errorf("entries = %d, want %d (%+v)", len(desc.Entries), tt.wantEntries, desc.Entries)
			}
			if len(desc.Warnings) != tt.wantWarnings {
				t.Errorf("warnings = %d, want %d (%v)", len(desc.Warnings), tt.wantWarnings, desc.Warnings)
			}
		})
	}
}

func TestParseDescription_DuplicateIndexKeepsFirstValue(t *testing.T) {
	desc, err := ParseDescription("... change 1\n... depotFile0 //depot/a.txt\n... depotFile0 //depot/z.txt\n... action0 add\n")
	if err != nil {
		t.Fatalf("ParseDescription error = %v", err)
	}
	if desc.Entries[0].DepotPath != "//depot/a.txt" {
		t.Errorf("DepotPath = %q, want first value", desc.Entries[0].DepotPath)
	}
}

func TestParseDescription_Malformed(t *testing.T) {
	for _, out := range []string{"", "Change 12 unknown.\n", "... depotFile0 //depot/a\n... action0 add\n"} {
		_, err := ParseDescription(out)
		if !errors.Is(err, ErrMalformedOutput) {
			t.Errorf("ParseDescription(%q) error = %v, want ErrMalformedOutput", out, err)
		}
	}
}

func TestParseTagged_RepeatedKeyStartsRecord(t *testing.T) {
	out := "... depotFile //depot/a\n... clientFile //ws/a\n... path D:\\ws\\a\n" +
		"... depotFile //depot/b\n... clientFile //ws/b\n... path D:\\ws\\b\n"
	records := ParseTagged(out)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1].Fields["path"] != `D:\ws\b` {
		t.Errorf("second path = %q", records[1].Fields["path"])
	}
}

func TestParseWherePath(t *testing.T) {
	tests := []struct {
		name   string
		out    string
		want   string
		wantOK bool
	}{
		{
			name:   "mapped",
			out:    "... depotFile //depot/Game/a.mat\n... clientFile //ws/Game/a.mat\n... path D:\\ws\\Game\\a.mat\n",
			want:   `D:\ws\Game\a.mat`,
			wantOK: true,
		},
		{
			name:   "path with spaces",
			out:    "... depotFile //depot/My Game/a.mat\n... path C:\\Users\\me\\My Game\\a.mat\n",
			want:   `C:\Users\me\My Game\a.mat`,
			wantOK: true,
		},
		{
			name:   "unmapped then mapped",
			out:    "... depotFile //depot/x\n... unmap \n... path D:\\ws\\x\n... depotFile //depot/x\n... path E:\\ws\\x\n",
			want:   `E:\ws\x`,
			wantOK: true,
		},
		{
			name:   "no path",
			out:    "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseWherePath(tt.out)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseWherePath() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseCreatedChange(t *testing.T) {
	if id, ok := ParseCreatedChange("Change 4321 created.\n"); !ok || id != "4321" {
		t.Errorf("ParseCreatedChange = %q, %v", id, ok)
	}
	if _, ok := ParseCreatedChange("Change 4321 updated.\n"); ok {
		t.Error("expected no match for updated change")
	}
}
