package chunk

import (
	"strings"
	"testing"
)

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	chunks := Split("short", DefaultOptions())

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Text != "short" || c.Index != 1 || c.Total != 1 || !c.IsFirst || !c.IsLast {
		t.Errorf("chunk = %+v", c)
	}
}

func TestSplit_NonPositiveMaxLength(t *testing.T) {
	text := strings.Repeat("x", 5000)
	chunks := Split(text, Options{MaxLength: 0})

	if len(chunks) != 1 || chunks[0].Text != text {
		t.Errorf("MaxLength 0 should disable splitting, got %d chunks", len(chunks))
	}
}

func TestSplit_HardCutTerminatesAndRoundTrips(t *testing.T) {
	text := strings.Repeat("a", 10000)
	chunks := Split(text, Options{MaxLength: 3800})

	if len(chunks) != 3 {
		t.Errorf("got %d chunks, want 3", len(chunks))
	}
	var rebuilt strings.Builder
	for i, c := range chunks {
		if len(c.Text) > 3800 {
			t.Errorf("chunk %d is %d bytes, over the limit", i, len(c.Text))
		}
		if c.Index != i+1 || c.Total != len(chunks) {
			t.Errorf("chunk %d has Index=%d Total=%d", i, c.Index, c.Total)
		}
		rebuilt.WriteString(c.Text)
	}
	if rebuilt.String() != text {
		t.Error("concatenated chunks do not reproduce the input")
	}
	if !chunks[0].IsFirst || chunks[0].IsLast {
		t.Errorf("first chunk flags wrong: %+v", chunks[0])
	}
	last := chunks[len(chunks)-1]
	if last.IsFirst || !last.IsLast {
		t.Errorf("last chunk flags wrong: %+v", last)
	}
}

func TestSplit_SentenceBoundaryRoundTrips(t *testing.T) {
	text := strings.Repeat("This is a sentence. ", 500)
	chunks := Split(text, Options{MaxLength: 1000})

	var rebuilt strings.Builder
	for _, c := range chunks {
		if len(c.Text) > 1000 {
			t.Errorf("chunk over limit: %d bytes", len(c.Text))
		}
		rebuilt.WriteString(c.Text)
	}
	if rebuilt.String() != text {
		t.Error("sentence-boundary splitting lost bytes")
	}
	// Every cut but the last should land after a sentence end.
	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c.Text, ". ") {
			t.Errorf("chunk %d does not end on a sentence boundary: ...%q", i, tail(c.Text, 10))
		}
	}
}

func TestSplit_PreserveHeadersSplitsBeforeHeading(t *testing.T) {
	intro := strings.Repeat("word ", 15) // 75 bytes
	text := intro + "\n## Section\n" + strings.Repeat("body ", 20)

	chunks := Split(text, Options{MaxLength: 90, PreserveHeaders: true})

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}
	if !strings.HasPrefix(chunks[1].Text, "## Section") {
		t.Errorf("second chunk should open with the heading, got %q", head(chunks[1].Text, 20))
	}
	if !strings.HasSuffix(chunks[0].Text, "\n") {
		t.Errorf("first chunk should keep the boundary newline, got ...%q", tail(chunks[0].Text, 10))
	}
}

func TestSplit_HeadersIgnoredWhenDisabled(t *testing.T) {
	intro := "One sentence here. Another follows here and keeps going"
	text := intro + "\n## Section\n" + strings.Repeat("body ", 30)

	chunks := Split(text, Options{MaxLength: 80, PreserveHeaders: false})

	if strings.HasPrefix(chunks[1].Text, "## Section") {
		t.Error("heading boundary used despite PreserveHeaders=false")
	}
}

func TestSplit_NewlineFallback(t *testing.T) {
	text := strings.Repeat("aaaaaaaaaa\n", 100)
	chunks := Split(text, Options{MaxLength: 50})

	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c.Text)
	}
	if rebuilt.String() != text {
		t.Error("newline splitting lost bytes")
	}
	if !strings.HasSuffix(chunks[0].Text, "\n") {
		t.Errorf("cut should consume the newline with the prefix, got ...%q", tail(chunks[0].Text, 5))
	}
}

func TestSplit_AddChunkHeaders(t *testing.T) {
	text := strings.Repeat("a", 250)
	chunks := Split(text, Options{MaxLength: 100, AddChunkHeaders: true})

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		want := "("
		if !strings.HasPrefix(c.Text, want) {
			t.Errorf("chunk %d missing header: %q", i, head(c.Text, 12))
		}
		if len(c.Text) > 100 {
			t.Errorf("chunk %d is %d bytes with header, over the limit", i, len(c.Text))
		}
	}
	if !strings.HasPrefix(chunks[0].Text, "(1/") {
		t.Errorf("first header = %q", head(chunks[0].Text, 8))
	}
}

func TestSplit_NoHeaderOnSingleChunk(t *testing.T) {
	chunks := Split("tiny", Options{MaxLength: 100, AddChunkHeaders: true})

	if chunks[0].Text != "tiny" {
		t.Errorf("single chunk gained a header: %q", chunks[0].Text)
	}
}

func TestForChannel(t *testing.T) {
	text := strings.Repeat("a", 4500)

	if chunks := ForChannel(text, "discord"); len(chunks) < 3 {
		t.Errorf("discord (2000) produced %d chunks", len(chunks))
	}
	if chunks := ForChannel(text, "slack"); len(chunks) != 1 {
		t.Errorf("slack (40000) produced %d chunks", len(chunks))
	}
}

func TestLimitFor(t *testing.T) {
	if got := LimitFor("Telegram"); got != 4096 {
		t.Errorf("LimitFor(Telegram) = %d", got)
	}
	if got := LimitFor("unknown"); got != DefaultMaxLength {
		t.Errorf("LimitFor(unknown) = %d", got)
	}
}

func TestSummaryHeader(t *testing.T) {
	cases := []struct {
		count int
		bytes int
		want  string
	}{
		{1, 812, "[1 part, 812 B]"},
		{3, 5300, "[3 parts, 5.2 kB]"},
		{12, 51200, "[12 parts, 50 kB]"},
	}
	for _, tc := range cases {
		if got := SummaryHeader(tc.count, tc.bytes); got != tc.want {
			t.Errorf("SummaryHeader(%d, %d) = %q, want %q", tc.count, tc.bytes, got, tc.want)
		}
	}
}

func head(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func tail(s string, n int) string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
