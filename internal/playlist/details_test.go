package playlist

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gmusicplaylist/internal/utils"
)

func TestDecodeDetailsTooFewFields(t *testing.T) {
	c := utils.NewCodec(',')

	for _, line := range []string{"", "just a title"} {
		d := DecodeDetails(c.Split(line), DefaultOrder)
		if len(d) != len(DefaultOrder) {
			t.Fatalf("DecodeDetails(%q) has %d fields, want %d", line, len(d), len(DefaultOrder))
		}
		for _, name := range DefaultOrder {
			v, ok := d[name]
			if !ok {
				t.Errorf("DecodeDetails(%q) missing field %q", line, name)
			}
			if v != nil {
				t.Errorf("DecodeDetails(%q)[%q] = %q, want nil", line, name, *v)
			}
		}
		if !d.IsEmpty() {
			t.Errorf("DecodeDetails(%q).IsEmpty() = false", line)
		}
	}
}

func TestDecodeDetailsPositional(t *testing.T) {
	c := utils.NewCodec(',')
	order := []string{FieldTitle, FieldArtist, FieldAlbum, FieldSongID}

	d := DecodeDetails(c.Split(`  One , U2 ,"Achtung Baby, Deluxe",Tabc,extra`), order)

	want := map[string]string{
		FieldTitle:  "One",
		FieldArtist: "U2",
		FieldAlbum:  "Achtung Baby, Deluxe",
		FieldSongID: "Tabc",
	}
	for k, v := range want {
		if got := d.Get(k); got != v {
			t.Errorf("Get(%q) = %q, want %q", k, got, v)
		}
	}
	if len(d) != len(order) {
		t.Errorf("len(details) = %d, want %d (extra fields must be ignored)", len(d), len(order))
	}
}

func TestDecodeDetailsShortLine(t *testing.T) {
	c := utils.NewCodec(',')

	d := DecodeDetails(c.Split("One,U2"), DefaultOrder)
	if d.Get(FieldArtist) != "U2" {
		t.Errorf("artist = %q, want U2", d.Get(FieldArtist))
	}
	for _, name := range []string{FieldAlbum, FieldGenre, FieldYear, FieldSongID} {
		if d[name] != nil {
			t.Errorf("%s = %q, want nil", name, *d[name])
		}
	}
}

func TestDecodeDetailsDoubledQuote(t *testing.T) {
	c := utils.NewCodec(',')

	d := DecodeDetails(c.Split(`"a""b",c`), DefaultOrder)
	if got := d.Get(FieldTitle); got != `a"b` {
		t.Errorf("title = %q, want %q", got, `a"b`)
	}
	if got := d.Get(FieldArtist); got != "c" {
		t.Errorf("artist = %q, want c", got)
	}
}

func TestEncodeDetails(t *testing.T) {
	c := utils.NewCodec(',')

	d := Details{
		FieldTitle:  ptr("Hello, Goodbye"),
		FieldArtist: ptr("The Beatles"),
		FieldSongID: ptr("T123"),
		FieldGenre:  nil,
	}

	tests := []struct {
		name   string
		skipID bool
		want   string
	}{
		{name: "with id", want: `"Hello, Goodbye",The Beatles,T123`},
		{name: "skip id", skipID: true, want: `"Hello, Goodbye",The Beatles`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeDetails(c, d, DefaultOrder, tt.skipID); got != tt.want {
				t.Errorf("EncodeDetails() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []Details{
		{
			FieldTitle:  ptr(`Song "2"`),
			FieldArtist: ptr("AC|DC"),
			FieldAlbum:  ptr("Back, in Black"),
			FieldGenre:  ptr("Rock"),
			FieldYear:   ptr("1980"),
			FieldSongID: ptr("Tx9"),
		},
		{
			FieldTitle:  ptr(`"`),
			FieldArtist: ptr(`""`),
			FieldAlbum:  ptr("|"),
			FieldGenre:  ptr(""),
			FieldYear:   ptr("2001"),
			FieldSongID: ptr("id"),
		},
	}

	for _, sep := range []rune{'|', ',', '\t'} {
		c := utils.NewCodec(sep)
		for _, r := range records {
			line := EncodeDetails(c, r, DefaultOrder, false)
			got := DecodeDetails(c.Split(line), DefaultOrder)
			for _, name := range DefaultOrder {
				if got.Get(name) != r.Get(name) {
					t.Errorf("sep %q field %s: got %q, want %q (line %q)", sep, name, got.Get(name), r.Get(name), line)
				}
			}
		}
	}
}

func TestTrackDetails(t *testing.T) {
	tr := Track{Title: "One", Artist: "U2", Album: "Achtung Baby", LibraryID: "lib-1"}

	d := tr.Details()
	if _, ok := d[FieldGenre]; ok {
		t.Error("Details() should omit genre when the track has none")
	}
	if _, ok := d[FieldYear]; ok {
		t.Error("Details() should omit year when the track has none")
	}
	if got := d.Get(FieldSongID); got != "lib-1" {
		t.Errorf("songid = %q, want lib-1", got)
	}

	tr.StoreID = "T1"
	tr.Year = 1991
	d = tr.Details()
	if got := d.Get(FieldSongID); got != "T1" {
		t.Errorf("songid = %q, want store id T1", got)
	}
	if got := d.Get(FieldYear); got != "1991" {
		t.Errorf("year = %q, want 1991", got)
	}
}

func TestSearchString(t *testing.T) {
	d := Details{FieldTitle: ptr("One"), FieldArtist: ptr("U2"), FieldAlbum: nil}
	if got := d.SearchString(); got != "U2 One" {
		t.Errorf("SearchString() = %q, want %q", got, "U2 One")
	}
}

func TestParseOrder(t *testing.T) {
	if got := ParseOrder(""); !reflect.DeepEqual(got, DefaultOrder) {
		t.Errorf("ParseOrder(\"\") = %v, want %v", got, DefaultOrder)
	}
	want := []string{"artist", "title", "songid"}
	if got := ParseOrder(" Artist, title ,,songid"); !reflect.DeepEqual(got, want) {
		t.Errorf("ParseOrder() = %v, want %v", got, want)
	}
}

func TestWriteFileReadFile(t *testing.T) {
	c := utils.NewCodec('|')
	path := filepath.Join(t.TempDir(), "mix.csv")

	tracks := []Track{
		{Title: "One", Artist: "U2", Album: "Achtung Baby", Genre: "Rock", Year: 1991, StoreID: "T1"},
		{Title: "Pipe | Dream", Artist: `The "Quotes"`, Album: "B", Genre: "Pop", Year: 2000, LibraryID: "L2"},
	}

	if err := WriteFile(path, c, DefaultOrder, tracks); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file should be gone after WriteFile()")
	}

	lines, err := ReadFile(path, c, DefaultOrder)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("ReadFile() returned %d lines, want 2 (header must be skipped)", len(lines))
	}
	if got := lines[1].Details.Get(FieldTitle); got != "Pipe | Dream" {
		t.Errorf("title = %q, want %q", got, "Pipe | Dream")
	}
	if got := lines[1].Details.Get(FieldArtist); got != `The "Quotes"` {
		t.Errorf("artist = %q", got)
	}
	if got := lines[1].Details.Get(FieldSongID); got != "L2" {
		t.Errorf("songid = %q, want L2", got)
	}
	if lines[0].Number != 2 {
		t.Errorf("first record line number = %d, want 2", lines[0].Number)
	}
}

func TestReadLinesSkipsCommentsAndBlanks(t *testing.T) {
	c := utils.NewCodec(',')
	input := "# exported list\n\nOne,U2\r\n   \nsolo\n"

	lines, err := ReadLines(strings.NewReader(input), c, DefaultOrder)
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("ReadLines() returned %d lines, want 2", len(lines))
	}
	if lines[0].Details.Get(FieldArtist) != "U2" {
		t.Errorf("artist = %q, want U2", lines[0].Details.Get(FieldArtist))
	}
	if !lines[1].Details.IsEmpty() {
		t.Errorf("single field line should decode to an empty record")
	}
}

func TestWriteTracksHeader(t *testing.T) {
	var buf bytes.Buffer
	c := utils.NewCodec(',')
	if err := WriteTracks(&buf, c, []string{"title", "artist"}, nil); err != nil {
		t.Fatalf("WriteTracks() error = %v", err)
	}
	if got := buf.String(); got != "title,artist\n" {
		t.Errorf("WriteTracks() = %q", got)
	}
}
