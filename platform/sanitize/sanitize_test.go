package sanitize

import "testing"

func TestTextStripsTagsAndEncodedTags(t *testing.T) {
	got := Text("  <b>Call</b> back &lt;script&gt;alert(1)&lt;/script&gt; monday ")
	if got != "Call back alert(1) monday" {
		t.Fatalf("unexpected sanitized text %q", got)
	}
}

func TestTextPtrNil(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("expected nil passthrough")
	}
}
