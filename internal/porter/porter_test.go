package porter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gmusicplaylist/internal/adapters"
	"gmusicplaylist/internal/playlist"
	"gmusicplaylist/internal/utils"
)

// fakeAdapter is an in-memory music service.
type fakeAdapter struct {
	authenticated bool
	loginErr      error
	searchErr     error
	creds         adapters.Credentials
	logouts       int

	library   []playlist.Track
	playlists []playlist.Playlist
	items     map[string][]playlist.Track
	catalog   []playlist.Track

	searches []string
	created  []playlist.Playlist
	added    [][]string
}

func (f *fakeAdapter) Login(ctx context.Context, creds adapters.Credentials) error {
	f.creds = creds
	if f.loginErr != nil {
		return f.loginErr
	}
	f.authenticated = true
	return nil
}

func (f *fakeAdapter) Logout() error {
	f.logouts++
	f.authenticated = false
	return nil
}

func (f *fakeAdapter) IsAuthenticated() bool { return f.authenticated }
func (f *fakeAdapter) PlatformName() string  { return "Fake" }

func (f *fakeAdapter) GetLibraryTracks(ctx context.Context) ([]playlist.Track, error) {
	return f.library, nil
}

func (f *fakeAdapter) GetUserPlaylists(ctx context.Context) ([]playlist.Playlist, error) {
	return f.playlists, nil
}

func (f *fakeAdapter) GetPlaylistItems(ctx context.Context, playlistID string) ([]playlist.Track, error) {
	return f.items[playlistID], nil
}

func (f *fakeAdapter) CreateNewPlaylist(ctx context.Context, name string, description string) (playlist.Playlist, error) {
	pl := playlist.Playlist{ID: fmt.Sprintf("pl%d", len(f.created)+1), Name: name, Description: description}
	f.created = append(f.created, pl)
	return pl, nil
}

func (f *fakeAdapter) AddItemsToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	f.added = append(f.added, append([]string(nil), trackIDs...))
	return nil
}

func (f *fakeAdapter) SearchTracks(ctx context.Context, query string, limit int) ([]playlist.Track, error) {
	f.searches = append(f.searches, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var results []playlist.Track
	for _, t := range f.catalog {
		if strings.Contains(strings.ToLower(query), strings.ToLower(t.Artist)) && len(results) < limit {
			results = append(results, t)
		}
	}
	return results, nil
}

func newTestPorter(t *testing.T, f *fakeAdapter) (*Porter, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	p := NewPorter(f, Options{
		Logger:            zap.New(core),
		ReadPassword:      func(string) (string, error) { return "hunter2", nil },
		LoginFailurePause: -1,
		Spinner: func(ctx context.Context, title string, action func(context.Context) error) error {
			return action(ctx)
		},
	})
	return p, logs
}

func messages(logs *observer.ObservedLogs) []string {
	var out []string
	for _, e := range logs.All() {
		out = append(out, e.Message)
	}
	return out
}

func hasMessage(logs *observer.ObservedLogs, want string) bool {
	for _, m := range messages(logs) {
		if m == want {
			return true
		}
	}
	return false
}

func TestOpenPassesCredentials(t *testing.T) {
	f := &fakeAdapter{}
	p, logs := newTestPorter(t, f)

	if err := p.Open(context.Background(), "alice", "0123456789abcdef"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	want := adapters.Credentials{Username: "alice", Password: "hunter2", DeviceID: "0123456789abcdef"}
	if f.creds != want {
		t.Errorf("Login() got %+v, want %+v", f.creds, want)
	}
	if !hasMessage(logs, "Login Successful.") {
		t.Errorf("missing login message, got %v", messages(logs))
	}
}

func TestOpenLoginFailure(t *testing.T) {
	f := &fakeAdapter{loginErr: errors.New("bad credentials")}
	p, logs := newTestPorter(t, f)

	err := p.Open(context.Background(), "alice", "id")
	if !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("Open() error = %v, want ErrLoginFailed", err)
	}
	if !errors.Is(err, f.loginErr) {
		t.Errorf("Open() error = %v, want it to wrap %v", err, f.loginErr)
	}
	if !hasMessage(logs, "unable to login") {
		t.Errorf("missing error message, got %v", messages(logs))
	}
}

func TestOpenPasswordError(t *testing.T) {
	f := &fakeAdapter{}
	p, _ := newTestPorter(t, f)
	want := errors.New("interrupted")
	p.opts.ReadPassword = func(string) (string, error) { return "", want }

	if err := p.Open(context.Background(), "alice", "id"); !errors.Is(err, want) {
		t.Errorf("Open() error = %v, want %v", err, want)
	}
	if f.authenticated {
		t.Error("Login() called without a password")
	}
}

func TestSearchDisablesAfterFailure(t *testing.T) {
	f := &fakeAdapter{searchErr: errors.New("forbidden")}
	p, logs := newTestPorter(t, f)
	ctx := context.Background()

	if got := p.Search(ctx, "u2 one", 5); got != nil {
		t.Errorf("Search() = %v, want nil", got)
	}
	if p.AllAccess() {
		t.Error("AllAccess() = true after failed search")
	}
	p.Search(ctx, "u2 one", 5)
	if len(f.searches) != 1 {
		t.Errorf("service searched %d times, want 1", len(f.searches))
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Errorf("want one warning, got %v", messages(logs))
	}
}

func TestCloseTwice(t *testing.T) {
	f := &fakeAdapter{}
	p, _ := newTestPorter(t, f)
	if err := p.Open(context.Background(), "alice", "id"); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if f.logouts != 1 {
		t.Errorf("Logout() called %d times, want 1", f.logouts)
	}
}

func TestLoadLibrary(t *testing.T) {
	f := &fakeAdapter{library: []playlist.Track{{Title: "One", LibraryID: "l1"}}}
	p, logs := newTestPorter(t, f)

	tracks, err := p.LoadLibrary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 {
		t.Errorf("LoadLibrary() = %d tracks, want 1", len(tracks))
	}
	if !hasMessage(logs, "done. 1 personal tracks loaded.") {
		t.Errorf("missing summary, got %v", messages(logs))
	}
}

func TestExportPlaylists(t *testing.T) {
	f := &fakeAdapter{
		playlists: []playlist.Playlist{
			{ID: "a", Name: "Road Trip"},
			{ID: "b", Name: "Road Trip"},
			{ID: "c", Name: "Mix/Tape"},
		},
		items: map[string][]playlist.Track{
			"a": {
				{Title: "One", Artist: "U2", Album: "Achtung Baby", Genre: "Rock", Year: 1991, PlayCount: 4, StoreID: "s1"},
				{Title: "Say \"Hi\"", Artist: "A|B", StoreID: "s2"},
			},
			"b": {{Title: "Yellow", Artist: "Coldplay", StoreID: "s3"}},
		},
	}
	p, logs := newTestPorter(t, f)
	dir := filepath.Join(t.TempDir(), "out")

	result, err := p.ExportPlaylists(context.Background(), dir)
	if err != nil {
		t.Fatalf("ExportPlaylists() error = %v", err)
	}
	if len(result.Files) != 3 || result.Tracks != 3 {
		t.Fatalf("ExportPlaylists() = %+v", result)
	}

	wantFiles := []string{"Road Trip.csv", "Road Trip (2).csv", "Mix-Tape.csv"}
	for i, name := range wantFiles {
		if got := filepath.Base(result.Files[i]); got != name {
			t.Errorf("file %d = %q, want %q", i, got, name)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "Road Trip.csv"))
	if err != nil {
		t.Fatal(err)
	}
	want := "title|artist|album|genre|year|songid\n" +
		"One|U2|Achtung Baby|Rock|1991|s1\n" +
		"\"Say \"\"Hi\"\"\"|\"A|B\"||||s2\n"
	if string(data) != want {
		t.Errorf("Road Trip.csv =\n%s\nwant\n%s", data, want)
	}

	if !hasMessage(logs, "top 3 genres: [Rock (1)]") {
		t.Errorf("missing genre stats, got %v", messages(logs))
	}
	if !hasMessage(logs, "3 playlists exported, 3 tracks total") {
		t.Errorf("missing summary, got %v", messages(logs))
	}
}

func writeImport(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Favorites.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportPlaylist(t *testing.T) {
	f := &fakeAdapter{
		library: []playlist.Track{
			{Title: "Yellow", Artist: "Coldplay", Genre: "Pop", LibraryID: "lib-yellow"},
		},
		catalog: []playlist.Track{
			{Title: "One (Live)", Artist: "U2", StoreID: "live"},
			{Title: "One", Artist: "U2", StoreID: "studio"},
		},
	}
	p, logs := newTestPorter(t, f)
	path := writeImport(t,
		"title|artist|album|genre|year|songid",
		"# comment",
		"",
		"Anything|Anyone||||given-id",
		"yellow|coldplay",
		"One|U2|Achtung Baby",
		"Nothing|Nobody",
		"justonefield",
	)

	result, err := p.ImportPlaylist(context.Background(), path, "")
	if err != nil {
		t.Fatalf("ImportPlaylist() error = %v", err)
	}
	if result.Found != 3 || result.NotFound != 2 {
		t.Errorf("ImportPlaylist() found %d, not found %d, want 3 and 2", result.Found, result.NotFound)
	}
	if result.Playlist.Name != "Favorites" {
		t.Errorf("playlist name = %q, want Favorites", result.Playlist.Name)
	}
	if len(f.added) != 1 {
		t.Fatalf("AddItemsToPlaylist() called %d times, want 1", len(f.added))
	}
	want := []string{"given-id", "lib-yellow", "studio"}
	if strings.Join(f.added[0], ",") != strings.Join(want, ",") {
		t.Errorf("added %v, want %v", f.added[0], want)
	}
	if !hasMessage(logs, "- not found: Nothing|Nobody") {
		t.Errorf("missing not found line, got %v", messages(logs))
	}
	if !hasMessage(logs, "3/5 tracks found") {
		t.Errorf("missing summary, got %v", messages(logs))
	}
}

func TestImportPlaylistBatches(t *testing.T) {
	f := &fakeAdapter{}
	p, _ := newTestPorter(t, f)

	lines := []string{}
	for i := range 250 {
		lines = append(lines, fmt.Sprintf("Song %d|Artist||||id%d", i, i))
	}
	path := writeImport(t, lines...)

	if _, err := p.ImportPlaylist(context.Background(), path, "Big"); err != nil {
		t.Fatal(err)
	}
	if len(f.added) != 3 {
		t.Fatalf("AddItemsToPlaylist() called %d times, want 3", len(f.added))
	}
	for i, want := range []int{100, 100, 50} {
		if len(f.added[i]) != want {
			t.Errorf("batch %d has %d ids, want %d", i, len(f.added[i]), want)
		}
	}
	if f.created[0].Name != "Big" {
		t.Errorf("playlist name = %q, want Big", f.created[0].Name)
	}
}

func TestImportPlaylistNothingFound(t *testing.T) {
	f := &fakeAdapter{searchErr: errors.New("forbidden")}
	p, _ := newTestPorter(t, f)
	path := writeImport(t, "One|U2")

	_, err := p.ImportPlaylist(context.Background(), path, "")
	if !errors.Is(err, ErrNothingToImport) {
		t.Errorf("ImportPlaylist() error = %v, want ErrNothingToImport", err)
	}
	if len(f.created) != 0 {
		t.Error("playlist created with no tracks")
	}
}

func TestImportCustomSeparator(t *testing.T) {
	f := &fakeAdapter{}
	p, _ := newTestPorter(t, f)
	p.opts.Codec = utils.NewCodec(',')
	path := writeImport(t, "\"Hello, Goodbye\",The Beatles,,,,hg")

	if _, err := p.ImportPlaylist(context.Background(), path, ""); err != nil {
		t.Fatal(err)
	}
	if got := f.added[0]; len(got) != 1 || got[0] != "hg" {
		t.Errorf("added %v, want [hg]", got)
	}
}

func TestExportFileNamesNeverCollide(t *testing.T) {
	taken := make(map[string]bool)
	var got []string
	for _, name := range []string{"A", "A", "A (2)", "a", "B"} {
		got = append(got, exportFileName(playlist.Playlist{Name: name}, taken))
	}

	want := []string{"A.csv", "A (2).csv", "A (2) (2).csv", "a (3).csv", "B.csv"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("exportFileName() = %q, want %q", got, want)
	}
}

func TestExportPlaylistsKeepsEveryFile(t *testing.T) {
	f := &fakeAdapter{
		playlists: []playlist.Playlist{{ID: "1", Name: "A"}, {ID: "2", Name: "A"}, {ID: "3", Name: "A (2)"}},
		items: map[string][]playlist.Track{
			"1": {{Title: "one", Artist: "x"}},
			"2": {{Title: "two", Artist: "x"}},
			"3": {{Title: "three", Artist: "x"}},
		},
	}
	p, _ := newTestPorter(t, f)
	dir := t.TempDir()

	result, err := p.ExportPlaylists(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	for i, path := range result.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		title := f.items[f.playlists[i].ID][0].Title
		if !strings.Contains(string(data), "\n"+title+"|") {
			t.Errorf("%s does not hold playlist %s:\n%s", filepath.Base(path), f.playlists[i].ID, data)
		}
	}
}
