package citation

import (
	"testing"
)

func parseOne(t *testing.T, text string) Citation {
	t.Helper()
	parser := NewParser(testTemplates())
	citations := collect(parser, text)
	if len(citations) != 1 {
		t.Fatalf("Expected 1 citation in %q, got %d", text, len(citations))
	}
	return citations[0]
}

func TestRewriterDeadLinkScenario(t *testing.T) {
	rewriter := NewRewriter()
	c := parseOne(t, `{{citar web|url=http://dead.example/x|titulo=X}}`)

	got := rewriter.Run(c, "https://archive.example/2020/x", "2020-01-01", true)
	want := `{{citar web|url=http://dead.example/x|titulo=X|urlmorta=sim|arquivourl=https://archive.example/2020/x|arquivodata=2020-01-01}}`

	if got != want {
		t.Errorf("Unexpected rewrite:\n got  %s\n want %s", got, want)
	}
}

func TestRewriterIsPure(t *testing.T) {
	rewriter := NewRewriter()
	c := parseOne(t, `{{citar web|url=http://e/1|titulo=T}}`)

	first := rewriter.Run(c, "https://a.example/s", "2021-05-05", true)
	second := rewriter.Run(c, "https://a.example/s", "2021-05-05", true)

	if first != second {
		t.Errorf("Rewriter is not deterministic:\n%s\n%s", first, second)
	}
}

func TestRewriterPreservesUntouchedFieldsByteForByte(t *testing.T) {
	rewriter := NewRewriter()
	c := parseOne(t, "{{citar web | url = http://e/1 | titulo = Título | acessodata = 2019-03-03 }}")

	got := rewriter.Run(c, "https://a.example/s", "2021-05-05", false)

	wantPrefix := "{{citar web | url = http://e/1 | titulo = Título | acessodata = 2019-03-03 "
	if len(got) < len(wantPrefix) || got[:len(wantPrefix)] != wantPrefix {
		t.Errorf("Untouched fields were altered:\n got %s", got)
	}
}

func TestRewriterUpdatesExistingArchiveFieldsInPlace(t *testing.T) {
	rewriter := NewRewriter()
	c := parseOne(t, "{{citar web|url=http://e/1|arquivourl= |arquivodata= 2019-01-01 |titulo=T}}")

	got := rewriter.Run(c, "https://a.example/s", "2021-05-05", false)
	want := "{{citar web|url=http://e/1|arquivourl=https://a.example/s|arquivodata= 2021-05-05 |titulo=T}}"

	if got != want {
		t.Errorf("Unexpected in-place update:\n got  %s\n want %s", got, want)
	}
}

func TestRewriterRemovesDeadFlagWhenAlive(t *testing.T) {
	rewriter := NewRewriter()
	c := parseOne(t, `{{citar web|url=http://e/1|urlmorta=sim|titulo=T}}`)

	got := rewriter.Run(c, "https://a.example/s", "2021-05-05", false)
	want := `{{citar web|url=http://e/1|titulo=T|arquivourl=https://a.example/s|arquivodata=2021-05-05}}`

	if got != want {
		t.Errorf("Dead flag should be removed for alive links:\n got  %s\n want %s", got, want)
	}
}

func TestRewriterUpdatesDeadFlagValueInPlace(t *testing.T) {
	rewriter := NewRewriter()
	c := parseOne(t, `{{citar web|url=http://e/1|urlmorta=não|titulo=T}}`)

	got := rewriter.Run(c, "https://a.example/s", "2021-05-05", true)
	want := `{{citar web|url=http://e/1|urlmorta=sim|titulo=T|arquivourl=https://a.example/s|arquivodata=2021-05-05}}`

	if got != want {
		t.Errorf("Dead flag should be updated in place:\n got  %s\n want %s", got, want)
	}
}

func TestRewriterKeepsPositionalParameters(t *testing.T) {
	rewriter := NewRewriter()
	c := parseOne(t, `{{citar web|url=http://e/1|primeiro|titulo=T}}`)

	got := rewriter.Run(c, "https://a.example/s", "2021-05-05", true)
	want := `{{citar web|url=http://e/1|primeiro|titulo=T|urlmorta=sim|arquivourl=https://a.example/s|arquivodata=2021-05-05}}`

	if got != want {
		t.Errorf("Positional parameter lost:\n got  %s\n want %s", got, want)
	}
}
