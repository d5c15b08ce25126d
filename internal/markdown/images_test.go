package markdown

import (
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestImageSources - DOM scan of rendered fragments
// ---------------------------------------------------------------------------

func TestImageSources(t *testing.T) {
	t.Parallel()

	fragment := `<p><img src="a.png" alt="a"/> text <a href="x.html">x</a></p>
<table><tr><td><img src="img/b.svg"/></td></tr></table>
<p><img alt="no src"/><img src="https://example.com/c.png"/></p>`

	got, err := imageSources(fragment)
	if err != nil {
		t.Fatalf("imageSources() error = %v", err)
	}

	want := []string{"a.png", "img/b.svg", "https://example.com/c.png"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("imageSources() = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestLocalImagePath - Source classification
// ---------------------------------------------------------------------------

func TestLocalImagePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src    string
		want   string
		wantOK bool
	}{
		{src: "a.png", want: "a.png", wantOK: true},
		{src: "./img/a.png", want: filepath.Join("img", "a.png"), wantOK: true},
		{src: "img/a.png?v=2", want: filepath.Join("img", "a.png"), wantOK: true},
		{src: "img/a.svg#icon", want: filepath.Join("img", "a.svg"), wantOK: true},
		{src: "my%20image.png", want: "my image.png", wantOK: true},
		{src: "../shared/a.png", want: filepath.Join("..", "shared", "a.png"), wantOK: true},
		{src: "", wantOK: false},
		{src: "#frag", wantOK: false},
		{src: "/abs/a.png", wantOK: false},
		{src: "http://example.com/a.png", wantOK: false},
		{src: "https://example.com/a.png", wantOK: false},
		{src: "data:image/png;base64,AAA", wantOK: false},
		{src: "blob:https://example.com/x", wantOK: false},
		{src: "//cdn.example.com/a.png", wantOK: false},
		{src: "file:///tmp/a.png", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()

			got, ok := localImagePath(tt.src)
			if ok != tt.wantOK {
				t.Fatalf("localImagePath(%q) ok = %v, want %v", tt.src, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("localImagePath(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPreprocess - Line endings and highlight marks
// ---------------------------------------------------------------------------

func TestPreprocess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "crlf", input: "a\r\nb\rc", want: "a\nb\nc"},
		{name: "highlight", input: "a ==b c== d", want: "a " + markStart + "b c" + markEnd + " d"},
		{name: "comparison untouched", input: "if a == b == c", want: "if a == b == c"},
		{name: "empty marks untouched", input: "====", want: "===="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := preprocess(tt.input); got != tt.want {
				t.Errorf("preprocess(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
