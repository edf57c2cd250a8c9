package playlist

import (
	"strings"

	"gmusicplaylist/internal/utils"
)

// Field names understood in playlist files.
const (
	FieldTitle  = "title"
	FieldArtist = "artist"
	FieldAlbum  = "album"
	FieldGenre  = "genre"
	FieldYear   = "year"
	FieldSongID = "songid"
)

// DefaultOrder is the canonical field order used when the config file
// doesn't set field_order.
var DefaultOrder = []string{FieldTitle, FieldArtist, FieldAlbum, FieldGenre, FieldYear, FieldSongID}

// Details is one playlist line: field name to value. A nil value means the
// field is known but has no value; a missing key means the field is absent.
type Details map[string]*string

// Get returns the value of a field, or "" when absent or nil.
func (d Details) Get(field string) string {
	if v := d[field]; v != nil {
		return *v
	}
	return ""
}

// IsEmpty reports whether no field carries a value.
func (d Details) IsEmpty() bool {
	for _, v := range d {
		if v != nil {
			return false
		}
	}
	return true
}

// SearchString builds a search query from the artist, title and album.
func (d Details) SearchString() string {
	var parts []string
	for _, f := range []string{FieldArtist, FieldTitle, FieldAlbum} {
		if v := d.Get(f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// DecodeDetails assigns already split fields to the names in order.
// Lines with fewer than two fields decode to a record where every field is
// nil. Values are trimmed, fields past the end of order are ignored.
func DecodeDetails(fields []string, order []string) Details {
	d := make(Details, len(order))
	for _, name := range order {
		d[name] = nil
	}
	if len(fields) < 2 {
		return d
	}
	for i, f := range fields {
		if i >= len(order) {
			break
		}
		d[order[i]] = ptr(strings.TrimSpace(f))
	}
	return d
}

// EncodeDetails renders d as one line in the given field order. Absent and
// nil fields are skipped without leaving an empty slot, so a record missing
// a middle field won't line up with order when read back.
func EncodeDetails(c utils.Codec, d Details, order []string, skipID bool) string {
	var fields []string
	for _, name := range order {
		if skipID && name == FieldSongID {
			continue
		}
		v, ok := d[name]
		if !ok || v == nil {
			continue
		}
		fields = append(fields, *v)
	}
	return c.Join(fields)
}

// ParseOrder reads a comma separated field list, as found in the config file.
// An empty list yields DefaultOrder.
func ParseOrder(s string) []string {
	var order []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			order = append(order, f)
		}
	}
	if len(order) == 0 {
		return append([]string(nil), DefaultOrder...)
	}
	return order
}
