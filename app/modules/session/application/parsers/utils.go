package parsers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type column int

const (
	colID column = iota
	colName
	colRating
	colArrive
	colLeave
)

var headerAliases = map[string]column{
	"id":           colID,
	"player_id":    colID,
	"player id":    colID,
	"name":         colName,
	"player":       colName,
	"display_name": colName,
	"display name": colName,
	"rating":       colRating,
	"level":        colRating,
	"skill":        colRating,
	"arrive":       colArrive,
	"arrive_at":    colArrive,
	"arrival":      colArrive,
	"leave":        colLeave,
	"leave_at":     colLeave,
	"departure":    colLeave,
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// mapHeader returns column positions keyed by role. A name column is required.
func mapHeader(header []string) (map[column]int, error) {
	cols := make(map[column]int)
	for i, h := range header {
		role, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, dup := cols[role]; !dup {
			cols[role] = i
		}
	}
	if _, ok := cols[colName]; !ok {
		return nil, fmt.Errorf("roster header has no name column: %v", header)
	}
	return cols, nil
}

// rowsToEntries converts tabular rows (header first) into roster entries.
func rowsToEntries(rows [][]string) ([]RosterEntry, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("roster is empty")
	}
	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	cell := func(row []string, c column) string {
		i, ok := cols[c]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	seen := make(map[string]int)
	var out []RosterEntry
	for n, row := range rows[1:] {
		name := cell(row, colName)
		if name == "" {
			continue
		}
		entry := RosterEntry{
			PlayerID:    cell(row, colID),
			DisplayName: name,
			ArriveAt:    cell(row, colArrive),
			LeaveAt:     cell(row, colLeave),
		}
		if entry.PlayerID == "" {
			entry.PlayerID = slugify(name)
		}
		if raw := cell(row, colRating); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid rating %q: %w", n+2, raw, err)
			}
			entry.Rating = &v
		}
		if prev, dup := seen[entry.PlayerID]; dup {
			return nil, fmt.Errorf("row %d: duplicate player %q (first seen on row %d)", n+2, entry.PlayerID, prev)
		}
		seen[entry.PlayerID] = n + 2
		out = append(out, entry)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("roster has no players")
	}
	return out, nil
}

func slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
