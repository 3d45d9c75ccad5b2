package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ValentinKolb/minidb/lib/command"
	"github.com/ValentinKolb/minidb/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("snapshot")

// --------------------------------------------------------------------------
// Loading
// --------------------------------------------------------------------------

// Load reads the snapshot file at path into the store and returns the number of
// records applied. A file that cannot be opened or read is not an error: the records
// read so far are kept and problems with the path only surface when saving.
func Load(path string, s store.IStore) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		log.Infof("no snapshot loaded from %s (%v), starting with an empty store", path, err)
		return 0, nil
	}
	defer f.Close()

	n, err := Read(f, s)
	if err != nil {
		log.Warningf("failed to read snapshot %s after %d records: %v", path, n, err)
		return n, nil
	}
	log.Infof("loaded %d records from %s", n, path)
	return n, nil
}

// Read parses snapshot records from r into the store.
// Each line must consist of exactly two whitespace separated fields (key and value);
// all other lines are skipped. Later records overwrite earlier ones for the same key.
func Read(r io.Reader, s store.IStore) (int, error) {
	reader := bufio.NewReader(r)
	applied := 0
	lineNo := 0

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			if fields := command.Tokenize(line); len(fields) == 2 {
				s.Set(fields[0], fields[1])
				applied++
			} else if len(fields) > 0 {
				log.Debugf("skipping malformed snapshot line %d (%d fields)", lineNo, len(fields))
			}
		}

		if errors.Is(err, io.EOF) {
			return applied, nil
		}
		if err != nil {
			return applied, err
		}
	}
}

// --------------------------------------------------------------------------
// Saving
// --------------------------------------------------------------------------

// Save writes a full snapshot of the store to path, truncating any previous content.
// Failing to create the file is returned as an error; the caller treats it as fatal.
func Save(path string, s store.IStore) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot %s for writing: %w", path, err)
	}

	n, err := Write(f, s)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot %s: %w", path, err)
	}

	log.Infof("saved %d records to %s", n, path)
	return nil
}

// Write serializes every entry of the store as a "key value\n" line.
// Entries are written in key order so that equal stores produce equal files.
func Write(w io.Writer, s store.IStore) (int, error) {
	keys := make([]string, 0, s.Len())
	values := make(map[string]string, s.Len())
	s.Range(func(key, value string) bool {
		keys = append(keys, key)
		values[key] = value
		return true
	})
	sort.Strings(keys)

	bw := bufio.NewWriter(w)
	var sb strings.Builder
	for _, key := range keys {
		sb.Reset()
		sb.WriteString(key)
		sb.WriteByte(' ')
		sb.WriteString(values[key])
		sb.WriteByte('\n')
		if _, err := bw.WriteString(sb.String()); err != nil {
			return 0, err
		}
	}

	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return len(keys), nil
}
