package logviewer

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Historical log files live in one flat directory. Plain files end in .log,
// rotated ones in .log.gz. Each line is `[HH:MM:SS] name | LEVEL | message`.
var logLineRe = regexp.MustCompile(
	`^\[(\d{2}:\d{2}:\d{2})\]\s+(.+?)\s+\|\s+(DEBUG|INFO|WARNING|ERROR|CRITICAL)\s+\|\s+(.*)$`,
)

// FileInfo describes one log file on disk.
type FileInfo struct {
	Name       string  `json:"name"`
	Size       int64   `json:"size"`
	SizeHuman  string  `json:"size_human"`
	Mtime      float64 `json:"mtime"`
	Compressed bool    `json:"compressed"`
}

// Entry is one parsed log line.
type Entry struct {
	Timestamp  string `json:"timestamp"`
	Level      string `json:"level"`
	LoggerName string `json:"logger_name"`
	Event      string `json:"event"`
	LineNumber int    `json:"line_number"`
	FileName   string `json:"file_name"`
}

// Store reads and filters historical log files.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a log file store rooted at dir.
func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Files lists log files, newest first.
func (s *Store) Files() ([]FileInfo, error) {
	exists, err := afero.DirExists(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat log dir: %w", err)
	}
	if !exists {
		return []FileInfo{}, nil
	}

	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log dir: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, fi := range entries {
		if fi.IsDir() || !isLogFile(fi.Name()) {
			continue
		}
		files = append(files, FileInfo{
			Name:       fi.Name(),
			Size:       fi.Size(),
			SizeHuman:  humanSize(fi.Size()),
			Mtime:      float64(fi.ModTime().Unix()),
			Compressed: strings.HasSuffix(fi.Name(), ".gz"),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Mtime > files[j].Mtime })
	return files, nil
}

// Filter narrows a search.
type Filter struct {
	Level   string
	Logger  string
	Keyword string
	Regex   string
}

// Search parses a file and returns the entries matching the filter, paged by
// offset/limit, along with the total match count.
func (s *Store) Search(name string, f Filter, offset, limit int) ([]Entry, int, error) {
	entries, err := s.parseFile(name)
	if err != nil {
		return nil, 0, err
	}

	var re *regexp.Regexp
	if f.Regex != "" {
		re, err = regexp.Compile(f.Regex)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid regex: %w", err)
		}
	}

	matched := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Level != "" && e.Level != f.Level {
			continue
		}
		if f.Logger != "" && e.LoggerName != f.Logger {
			continue
		}
		if f.Keyword != "" && !strings.Contains(e.Event, f.Keyword) {
			continue
		}
		if re != nil && !re.MatchString(e.Event) {
			continue
		}
		matched = append(matched, e)
	}

	total := len(matched)
	if offset >= total {
		return []Entry{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// Loggers returns the distinct logger names appearing in a file.
func (s *Store) Loggers(name string) ([]string, error) {
	entries, err := s.parseFile(name)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var names []string
	for _, e := range entries {
		if _, ok := seen[e.LoggerName]; ok {
			continue
		}
		seen[e.LoggerName] = struct{}{}
		names = append(names, e.LoggerName)
	}
	sort.Strings(names)
	return names, nil
}

// Stats aggregates a file's entries by level and by logger.
type Stats struct {
	Total    int            `json:"total"`
	ByLevel  map[string]int `json:"by_level"`
	ByLogger map[string]int `json:"by_logger"`
}

// FileStats computes the per-level and per-logger totals for a file.
func (s *Store) FileStats(name string) (*Stats, error) {
	entries, err := s.parseFile(name)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:    len(entries),
		ByLevel:  make(map[string]int),
		ByLogger: make(map[string]int),
	}
	for _, e := range entries {
		stats.ByLevel[e.Level]++
		stats.ByLogger[e.LoggerName]++
	}
	return stats, nil
}

func (s *Store) parseFile(name string) ([]Entry, error) {
	// Reject anything that could escape the log directory.
	if name == "" || name != filepath.Base(name) || !isLogFile(name) {
		return nil, fmt.Errorf("invalid log file name: %q", name)
	}

	f, err := s.fs.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip log: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	var entries []Entry
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		m := logLineRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			// Continuation lines (stack traces etc.) attach to the previous entry.
			if len(entries) > 0 {
				entries[len(entries)-1].Event += "\n" + scanner.Text()
			}
			continue
		}
		entries = append(entries, Entry{
			Timestamp:  m[1],
			LoggerName: m[2],
			Level:      m[3],
			Event:      m[4],
			LineNumber: lineNo,
			FileName:   name,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan log file: %w", err)
	}
	return entries, nil
}

func isLogFile(name string) bool {
	return strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".log.gz")
}

func humanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}
