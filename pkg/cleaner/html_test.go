package cleaner

import (
	"strings"
	"testing"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain_text", "no markup here", "no markup here"},
		{"paragraph", "<p>Hello</p>", "Hello"},
		{"adjacent_blocks_do_not_merge", "<p>foo</p><p>bar</p>", "foo bar"},
		{"inline_elements", "I love <code>c++</code>", "I love  c++"},
		{"entities_decoded", "<p>a &amp; b &lt;c&gt;</p>", "a & b <c>"},
		{"script_skipped", "<p>text</p><script>var x = 1;</script>", "text"},
		{"style_skipped", "<style>p { color: red }</style><p>text</p>", "text"},
		{"comment_skipped", "<p>a<!-- hidden -->b</p>", "a b"},
		{"unclosed_tags", "<div><p>broken <b>markup", "broken  markup"},
		{"stray_angle_bracket", "if a < b then", "if a < b then"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StripHTML(tt.input)
			if !ok {
				t.Errorf("StripHTML(%q) fell back to pattern strip", tt.input)
			}
			if got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHTMLText_Clean_NeverErrors(t *testing.T) {
	c := NewHTMLText()
	inputs := []string{
		"<<<>>>",
		"<p",
		"</div></div></div>",
		"<![CDATA[ x ]]>",
		strings.Repeat("<div>", 500),
	}

	for _, in := range inputs {
		if _, err := c.Clean(in); err != nil {
			t.Errorf("Clean(%q) error = %v, want nil", in, err)
		}
	}
}

func TestHTMLText_Name(t *testing.T) {
	if got := NewHTMLText().Name(); got != "html-text" {
		t.Errorf("Name() = %q, want %q", got, "html-text")
	}
}
