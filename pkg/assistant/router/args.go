package router

import "strings"

// DraftArgs is the parsed form of a pipe-delimited draft argument such
// as "bob@x.com | subject: hi | let's meet tomorrow".
type DraftArgs struct {
	// Primary is the bare text before the first recognized key (the
	// recipient, event summary, etc).
	Primary string
	// Fields holds the key:value segments, keyed by lowercase key.
	Fields map[string]string
	// Body is the concatenation of bare segments after the primary.
	Body string
}

// Field returns the named field, or "" if it was not supplied.
func (a DraftArgs) Field(key string) string {
	return a.Fields[strings.ToLower(key)]
}

// ParseDraftArgs splits raw on pipes and classifies each trimmed
// segment. A segment of the form key:value, where key is one of the
// recognized keys (case-insensitive), becomes a field. Bare segments
// become the primary value first, then accumulate into the body.
func ParseDraftArgs(raw string, keys ...string) DraftArgs {
	recognized := make(map[string]bool, len(keys))
	for _, k := range keys {
		recognized[strings.ToLower(k)] = true
	}

	args := DraftArgs{Fields: make(map[string]string)}
	var body []string
	havePrimary := false

	for _, segment := range strings.Split(raw, "|") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		if key, value, ok := splitField(segment); ok && recognized[key] {
			args.Fields[key] = value
			continue
		}

		if !havePrimary {
			args.Primary = segment
			havePrimary = true
			continue
		}
		body = append(body, segment)
	}

	args.Body = strings.Join(body, "\n")
	return args
}

// SplitList splits a comma-separated list into trimmed, non-empty
// items. Used for attendee and cc fields.
func SplitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func splitField(segment string) (key, value string, ok bool) {
	idx := strings.Index(segment, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(segment[:idx]))
	value = strings.TrimSpace(segment[idx+1:])
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, value, true
}
