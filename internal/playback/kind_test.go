package playback

import "testing"

func TestKindFromSource(t *testing.T) {
	tests := []struct {
		src  string
		want Kind
	}{
		{"https://www.youtube.com/embed/dQw4w9WgXcQ?enablejsapi=1", KindYouTube},
		{"//youtube.com/embed/x", KindYouTube},
		{"https://player.vimeo.com/video/76979871", KindVimeo},
		{"https://youtu.be/dQw4w9WgXcQ", KindUnknown},
		{"https://cdn.shopify.com/videos/c/o/v/abc.mp4", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		if got := KindFromSource(tt.src); got != tt.want {
			t.Errorf("KindFromSource(%q) = %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindUnknown: "unknown",
		KindNative:  "native",
		KindYouTube: "youtube",
		KindVimeo:   "vimeo",
		Kind(99):    "unknown",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
	if KindNative.Embedded() || !KindVimeo.Embedded() {
		t.Error("unexpected Embedded result")
	}
}
