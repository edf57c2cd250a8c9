package playlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gmusicplaylist/internal/utils"
)

// Line is one decoded record from a playlist file.
type Line struct {
	Number  int
	Raw     string
	Details Details
}

// Header returns the header line for a playlist file.
func Header(c utils.Codec, order []string) string {
	return c.Join(order)
}

// WriteTracks writes a header line followed by one line per track. Fields a
// track doesn't carry are written empty so every line matches the header.
func WriteTracks(w io.Writer, c utils.Codec, order []string, tracks []Track) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, Header(c, order)); err != nil {
		return err
	}
	for _, t := range tracks {
		d := t.Details()
		for _, name := range order {
			if d[name] == nil {
				d[name] = ptr("")
			}
		}
		if _, err := fmt.Fprintln(bw, EncodeDetails(c, d, order, false)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes tracks to path. The file is written next to its
// destination first and renamed into place, so a failed export never leaves
// a half written playlist behind.
func WriteFile(path string, c utils.Codec, order []string, tracks []Track) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create playlist file: %w", err)
	}

	if err := WriteTracks(f, c, order, tracks); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write playlist file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write playlist file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save playlist file: %w", err)
	}
	return nil
}

// ReadLines decodes every record in r. Blank lines, lines starting with '#'
// and a header line matching order are skipped.
func ReadLines(r io.Reader, c utils.Codec, order []string) ([]Line, error) {
	header := Header(c, order)

	var lines []Line
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		raw := strings.TrimRight(scanner.Text(), "\r")
		raw = strings.TrimPrefix(raw, "\ufeff")
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.EqualFold(trimmed, header) {
			continue
		}
		lines = append(lines, Line{
			Number:  n,
			Raw:     raw,
			Details: DecodeDetails(c.Split(raw), order),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// ReadFile decodes the records of the playlist file at path.
func ReadFile(path string, c utils.Codec, order []string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening playlist file: %w", err)
	}
	defer f.Close()

	lines, err := ReadLines(f, c, order)
	if err != nil {
		return nil, fmt.Errorf("error reading playlist file: %w", err)
	}
	return lines, nil
}
