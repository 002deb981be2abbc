package p4

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Record is one object from p4 -ztag output.
type Record struct {
	// Fields holds the unindexed tags (change, status, path, ...)
	Fields map[string]string

	// Indexed holds per-file tags grouped by their numeric suffix, so
	// depotFile3 and action3 land in Indexed[3]
	Indexed map[int]map[string]string

	// Warnings lists tags that were dropped while parsing
	Warnings []string
}

func newRecord() *Record {
	return &Record{
		Fields:  make(map[string]string),
		Indexed: make(map[int]map[string]string),
	}
}

func (r *Record) empty() bool {
	return len(r.Fields) == 0 && len(r.Indexed) == 0
}

// Indices returns the per-file indices in ascending order.
func (r *Record) Indices() []int {
	idx := make([]int, 0, len(r.Indexed))
	for i := range r.Indexed {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

var (
	tagLine    = regexp.MustCompile(`^\.\.\. (\S+)(?: (.*))?$`)
	indexedTag = regexp.MustCompile(`^([A-Za-z_]+)(\d+)$`)
)

// ParseTagged parses p4 -ztag output into records.
//
// Lines look like "... key value". Lines without the "... " marker continue
// the previous value (multi-line descriptions). A repeated unindexed key
// starts a new record. A repeated indexed key keeps the first value and
// records a warning.
func ParseTagged(out string) []*Record {
	var records []*Record
	cur := newRecord()

	// unindexed key that continuation lines append to
	lastKey := ""
	for _, raw := range strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n") {
		m := tagLine.FindStringSubmatch(raw)
		if m == nil {
			if lastKey != "" && strings.TrimSpace(raw) != "" {
				cur.Fields[lastKey] += "\n" + raw
			}
			continue
		}
		key, value := m[1], strings.TrimRight(m[2], " ")
		lastKey = ""

		if im := indexedTag.FindStringSubmatch(key); im != nil {
			n, err := strconv.Atoi(im[2])
			if err != nil {
				cur.Warnings = append(cur.Warnings, fmt.Sprintf("unreadable tag %q", key))
				continue
			}
			group, ok := cur.Indexed[n]
			if !ok {
				group = make(map[string]string)
				cur.Indexed[n] = group
			}
			if _, dup := group[im[1]]; dup {
				cur.Warnings = append(cur.Warnings, fmt.Sprintf("duplicate tag %q ignored", key))
				continue
			}
			group[im[1]] = value
			continue
		}

		if _, dup := cur.Fields[key]; dup {
			records = append(records, cur)
			cur = newRecord()
		}
		cur.Fields[key] = value
		lastKey = key
	}
	if !cur.empty() {
		records = append(records, cur)
	}
	return records
}

// ParseDescription builds a ChangeDescription from describe -s output.
// Per-file index groups missing either the depot path or the action are
// dropped with a warning rather than failing the whole description.
func ParseDescription(out string) (*ChangeDescription, error) {
	records := ParseTagged(out)

	var rec *Record
	for _, r := range records {
		if _, ok := r.Fields["change"]; ok {
			rec = r
			break
		}
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: no change tag in describe output", ErrMalformedOutput)
	}

	desc := &ChangeDescription{
		ID:          rec.Fields["change"],
		Status:      rec.Fields["status"],
		User:        rec.Fields["user"],
		Client:      rec.Fields["client"],
		Description: strings.TrimSpace(rec.Fields["desc"]),
		Entries:     []PendingEntry{},
	}
	desc.Warnings = append(desc.Warnings, rec.Warnings...)
	if len(records) > 1 {
		desc.Warnings = append(desc.Warnings, fmt.Sprintf("%d extra records ignored", len(records)-1))
	}

	for _, i := range rec.Indices() {
		group := rec.Indexed[i]
		depot, _, _ := strings.Cut(group["depotFile"], "#")
		depot = strings.TrimSpace(depot)
		action := strings.TrimSpace(group["action"])

		switch {
		case depot == "" && action == "":
			// other indexed tags (jobs, fixes) are not file entries
			continue
		case depot == "":
			desc.Warnings = append(desc.Warnings, fmt.Sprintf("entry %d: action %q without depotFile dropped", i, action))
			continue
		case action == "":
			desc.Warnings = append(desc.Warnings, fmt.Sprintf("entry %d: %s without action dropped", i, depot))
			continue
		}

		desc.Entries = append(desc.Entries, PendingEntry{
			DepotPath: depot,
			Action:    FileAction(action),
			Rev:       group["rev"],
			Type:      group["type"],
		})
	}
	return desc, nil
}

// ParseWherePath returns the local path from where output. Unmapped
// records (tagged "unmap") are skipped.
func ParseWherePath(out string) (string, bool) {
	for _, r := range ParseTagged(out) {
		if _, unmapped := r.Fields["unmap"]; unmapped {
			continue
		}
		if p := strings.TrimSpace(r.Fields["path"]); p != "" {
			return p, true
		}
	}
	return "", false
}

var changeCreated = regexp.MustCompile(`Change\s+(\d+)\s+created`)

// ParseCreatedChange extracts the number from "Change N created." output.
func ParseCreatedChange(out string) (string, bool) {
	m := changeCreated.FindStringSubmatch(out)
	if m == nil {
		return "", false
	}
	return m[1], true
}
