// Package chunk segments outbound text for delivery through channels
// with payload-size ceilings. Cuts prefer semantically useful boundaries
// (markdown headings, sentence ends, newlines, spaces) before falling
// back to a hard cut, and every byte of the input lands in exactly one
// chunk, so concatenating chunk texts reproduces the input.
package chunk

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxLength is the default maximum chunk size in bytes, sized for
// the tightest mainstream platform ceiling with headroom for wrapping.
const DefaultMaxLength = 3800

// headerReserve is subtracted from the cut limit when chunk headers are
// requested, so the "(i/total) " prefix never pushes a chunk over the
// ceiling.
const headerReserve = 12

// ChannelLimits holds default message size limits per platform. The
// delivery layer consults these when the channel does not advertise its
// own ceiling.
var ChannelLimits = map[string]int{
	"telegram": 4096,
	"discord":  2000,
	"slack":    40000,
	"whatsapp": 65536,
	"signal":   65536,
	"sms":      160,
	"matrix":   65536,
	"imessage": 20000,
}

// LimitFor returns the message size limit for a channel, or
// DefaultMaxLength when the channel is unknown.
func LimitFor(channel string) int {
	if limit, ok := ChannelLimits[strings.ToLower(channel)]; ok {
		return limit
	}
	return DefaultMaxLength
}

// Chunk is one bounded-size segment of a larger text. Index is 1-based.
type Chunk struct {
	Text    string
	Index   int
	Total   int
	IsFirst bool
	IsLast  bool
}

// Options controls splitting behavior.
type Options struct {
	// MaxLength is the maximum chunk size in bytes. Zero or negative
	// disables splitting and yields a single chunk.
	MaxLength int

	// PreserveHeaders makes markdown headings start a new chunk when a
	// heading boundary exists before the cut limit.
	PreserveHeaders bool

	// AddChunkHeaders prefixes each chunk with a "(i/total) " marker when
	// the text splits into more than one chunk.
	AddChunkHeaders bool
}

// DefaultOptions returns the standard splitting configuration.
func DefaultOptions() Options {
	return Options{
		MaxLength:       DefaultMaxLength,
		PreserveHeaders: true,
	}
}

// headingRe matches a newline followed by a markdown heading marker.
// The cut goes just after the newline so the heading opens the next
// chunk.
var headingRe = regexp.MustCompile(`\n#{1,6}[ \t]`)

// sentenceEnds are searched in order; the boundary bytes stay with the
// leading chunk.
var sentenceEnds = []string{". ", "! ", "? "}

// Split segments text into ordered chunks of at most opts.MaxLength
// bytes. Text that fits, or a non-positive MaxLength, yields a single
// chunk. Boundary preference per cut: markdown heading (when
// opts.PreserveHeaders), sentence end, newline, space, hard cut.
func Split(text string, opts Options) []Chunk {
	if opts.MaxLength <= 0 || len(text) <= opts.MaxLength {
		return []Chunk{{Text: text, Index: 1, Total: 1, IsFirst: true, IsLast: true}}
	}

	limit := opts.MaxLength
	if opts.AddChunkHeaders && limit > headerReserve {
		limit -= headerReserve
	}

	var parts []string
	remaining := text
	for len(remaining) > limit {
		cut := findCut(remaining, limit, opts.PreserveHeaders)
		parts = append(parts, remaining[:cut])
		remaining = remaining[cut:]
	}
	if remaining != "" {
		parts = append(parts, remaining)
	}

	total := len(parts)
	chunks := make([]Chunk, 0, total)
	for i, part := range parts {
		if opts.AddChunkHeaders && total > 1 {
			part = fmt.Sprintf("(%d/%d) %s", i+1, total, part)
		}
		chunks = append(chunks, Chunk{
			Text:    part,
			Index:   i + 1,
			Total:   total,
			IsFirst: i == 0,
			IsLast:  i == total-1,
		})
	}
	return chunks
}

// SplitText splits with DefaultOptions.
func SplitText(text string) []Chunk {
	return Split(text, DefaultOptions())
}

// ForChannel splits text using the channel's default size limit.
func ForChannel(text, channel string) []Chunk {
	opts := DefaultOptions()
	opts.MaxLength = LimitFor(channel)
	return Split(text, opts)
}

// findCut picks the cut index for the next chunk, 0 < cut <= limit. The
// chosen boundary bytes are consumed with the prefix so no input byte is
// dropped or duplicated.
func findCut(text string, limit int, preserveHeaders bool) int {
	window := text[:limit]

	if preserveHeaders {
		if locs := headingRe.FindAllStringIndex(window, -1); len(locs) > 0 {
			// Split just after the newline; the heading starts the next
			// chunk.
			if cut := locs[len(locs)-1][0] + 1; cut > 0 {
				return cut
			}
		}
	}

	best := -1
	for _, end := range sentenceEnds {
		if idx := strings.LastIndex(window, end); idx >= 0 && idx+len(end) > best {
			best = idx + len(end)
		}
	}
	if best > 0 {
		return best
	}

	if idx := strings.LastIndexByte(window, '\n'); idx > 0 {
		return idx + 1
	}
	if idx := strings.LastIndexByte(window, ' '); idx > 0 {
		return idx + 1
	}

	// Hard cut.
	return limit
}

// SummaryHeader renders a human-readable label describing how the text
// was split, for example "[3 parts, 5.2 kB]".
func SummaryHeader(chunkCount, totalBytes int) string {
	plural := "s"
	if chunkCount == 1 {
		plural = ""
	}
	return fmt.Sprintf("[%d part%s, %s]", chunkCount, plural, formatBytes(totalBytes))
}

func formatBytes(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	kb := float64(n) / 1024
	if kb < 10 {
		return fmt.Sprintf("%.1f kB", kb)
	}
	return fmt.Sprintf("%.0f kB", kb)
}
