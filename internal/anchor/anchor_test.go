package anchor

// Notes:
// - ID is checked against the denylist with a rune scan instead of the
//   package regexp, so a broken pattern cannot hide behind itself.

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestID - Anchor identifiers
// ---------------------------------------------------------------------------

func TestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "basic", text: "Hello World", want: "hello-world"},
		{name: "cjk passes through", text: "测试标题", want: "测试标题"},
		{name: "cjk with spaces", text: "快速 开始", want: "快速-开始"},
		{name: "punctuation stripped", text: "Hello, World!", want: "hello-world"},
		{name: "ampersand between words", text: "Test & Example", want: "test-example"},
		{name: "repeated whitespace", text: "Multiple   Spaces", want: "multiple-spaces"},
		{name: "hyphen runs merged", text: "Hello---World", want: "hello-world"},
		{name: "leading and trailing whitespace", text: "  Hello World  ", want: "hello-world"},
		{name: "empty", text: "", want: ""},
		{name: "only punctuation", text: "?!...", want: ""},
		{name: "html tags stripped", text: "Use <code>go test</code> now", want: "use-go-test-now"},
		{name: "inline code backticks", text: "The `ID` function", want: "the-id-function"},
		{name: "underscore kept", text: "snake_case name", want: "snake_case-name"},
		{name: "digits kept", text: "Step 2: Build", want: "step-2-build"},
		{name: "general punctuation block", text: "Wait\u2026 what\u2014now", want: "wait-whatnow"},
		{name: "tab and newline", text: "a\tb\nc", want: "a-b-c"},
		{name: "ideographic space", text: "前言\u3000介绍", want: "前言-介绍"},
		{name: "closing hashes", text: "Title ##", want: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ID(tt.text); got != tt.want {
				t.Errorf("ID(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestID_Deterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{"Hello World", "Ünïcödé Tëxt", "a  -  b", "<b>Bold</b> move", "中文 标题!"}
	for _, in := range inputs {
		first := ID(in)
		for i := 0; i < 5; i++ {
			if got := ID(in); got != first {
				t.Fatalf("ID(%q) not deterministic: %q then %q", in, first, got)
			}
		}
	}
}

func TestID_NoDenylistedCharacters(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`Quotes "double" and 'single'`,
		`Path\to\file.md`,
		"Math: (a+b)*c = d/e; f<g>h",
		"Symbols #$%&@^`{|}~[]",
		"Dash\u2013and\u2014ellipsis\u2026",
		"Supplemental \u2E18punct\u2E3A",
	}

	for _, in := range inputs {
		got := ID(in)
		for _, r := range got {
			if isDenylisted(r) {
				t.Errorf("ID(%q) = %q contains denylisted rune %q", in, got, r)
			}
		}
	}
}

func TestID_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Hello World", "  spaced   out  ", "Already-slugged", "中文 标题"}
	for _, in := range inputs {
		once := ID(in)
		if twice := ID(once); twice != once {
			t.Errorf("ID(ID(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func isDenylisted(r rune) bool {
	if r >= 0x2000 && r <= 0x206F || r >= 0x2E00 && r <= 0x2E7F {
		return true
	}
	return strings.ContainsRune("\\'!\"#$%&()*+,./:;<=>?@[]^`{|}~", r)
}

// ---------------------------------------------------------------------------
// TestFilename - Output file names
// ---------------------------------------------------------------------------

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "plain title", title: "Getting Started", want: "getting-started"},
		{name: "surrounding whitespace", title: "  Getting   Started ", want: "getting-started"},
		{name: "empty falls back", title: "", want: FallbackName},
		{name: "punctuation only falls back", title: "???", want: FallbackName},
		{name: "cjk title", title: "安装指南", want: "安装指南"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Filename(tt.title); got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestFilename_MatchesID(t *testing.T) {
	t.Parallel()

	for _, title := range []string{"Intro", "API Reference", "Hello---World"} {
		if Filename(title) != ID(title) {
			t.Errorf("Filename(%q) = %q, ID = %q; want equal", title, Filename(title), ID(title))
		}
	}
}

// ---------------------------------------------------------------------------
// TestFilenames - Run-scoped unique names
// ---------------------------------------------------------------------------

func TestFilenames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		titles   []string
		reserved []string
		want     []string
	}{
		{
			name:   "distinct titles",
			titles: []string{"Intro", "Usage"},
			want:   []string{"intro", "usage"},
		},
		{
			name:   "duplicates get suffixes in order",
			titles: []string{"Intro", "intro", "INTRO!"},
			want:   []string{"intro", "intro-1", "intro-2"},
		},
		{
			name:     "reserved name skipped",
			titles:   []string{"Index", "Usage"},
			reserved: []string{"index"},
			want:     []string{"index-1", "usage"},
		},
		{
			name:   "fallbacks are unique too",
			titles: []string{"", "?"},
			want:   []string{"page", "page-1"},
		},
		{
			name:   "empty input",
			titles: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Filenames(tt.titles, tt.reserved...)
			if len(got) != len(tt.want) {
				t.Fatalf("Filenames() returned %d names, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Filenames()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
