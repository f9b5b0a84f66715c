package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// LogEntry represents a parsed log entry
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Category  string                 `json:"category"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LogReader reads the categorized log files written by MultiLogger
type LogReader struct {
	logsDir string
}

// NewLogReader creates a new log reader
func NewLogReader(logsDir string) *LogReader {
	return &LogReader{logsDir: logsDir}
}

// ReadLogs returns the last limit entries of a category for a date.
// A limit of 0 or less returns everything. A missing file yields no entries.
func (lr *LogReader) ReadLogs(category LogCategory, date time.Time, limit int) ([]LogEntry, error) {
	if !ValidCategory(category) {
		return nil, fmt.Errorf("unknown log category: %s", category)
	}

	file, err := os.Open(LogPath(lr.logsDir, category, date))
	if err != nil {
		if os.IsNotExist(err) {
			return []LogEntry{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	entries := make([]LogEntry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, parseEntry(line, category))
	}
	return entries, nil
}

// SearchLogs returns entries whose message, level or field values contain
// query, case-insensitively
func (lr *LogReader) SearchLogs(category LogCategory, date time.Time, query string, limit int) ([]LogEntry, error) {
	entries, err := lr.ReadLogs(category, date, 0)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	filtered := []LogEntry{}
	for _, entry := range entries {
		if entry.matches(query) {
			filtered = append(filtered, entry)
		}
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered, nil
}

func (e LogEntry) matches(query string) bool {
	if strings.Contains(strings.ToLower(e.Message), query) ||
		strings.Contains(strings.ToLower(e.Level), query) {
		return true
	}
	for _, v := range e.Fields {
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), query) {
			return true
		}
	}
	return false
}

// parseEntry decodes one JSON line written by MultiLogger. Lines that are
// not JSON become plain info entries.
func parseEntry(line string, category LogCategory) LogEntry {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{Level: "info", Message: line, Category: string(category)}
	}

	entry := LogEntry{Category: string(category)}
	take := func(key string) string {
		v, ok := raw[key]
		if !ok {
			return ""
		}
		delete(raw, key)
		s, _ := v.(string)
		return s
	}
	entry.Timestamp = take("ts")
	entry.Level = take("level")
	entry.Message = take("msg")
	if c := take("category"); c != "" {
		entry.Category = c
	}
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry
}
