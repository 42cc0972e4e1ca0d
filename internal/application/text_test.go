package application

import "testing"

func TestTitle(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"summer-party":     "Summer Party",
		"wedding":          "Wedding",
		"class-of-2024":    "Class Of 2024",
		"already-Upper":    "Already Upper",
		"":                 "",
		"trailing-":        "Trailing ",
		"o'brien-birthday": "O'Brien Birthday",
	}
	for in, want := range cases {
		if got := Title(in); got != want {
			t.Fatalf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlaceholderCover(t *testing.T) {
	t.Parallel()

	if got := placeholderCover("Beach Day"); got != placeholderCoverBase+"Beach%20Day" {
		t.Fatalf("unexpected placeholder %q", got)
	}
}

func TestLoadingSequence(t *testing.T) {
	t.Parallel()

	if got := loadingSequence(LinkVIP); got[0] != loadingMessages[LinkVIP][0] {
		t.Fatalf("unexpected vip sequence %v", got)
	}
	if got := loadingSequence("unknown"); len(got) != len(loadingMessages["default"]) {
		t.Fatalf("expected default sequence, got %v", got)
	}
}

func TestParseEventLink(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw      string
		want     EventLink
		complete bool
	}{
		{"/event.html?photographer=ana&album=summer-party&type=vip", EventLink{"ana", "summer-party", "vip"}, true},
		{"https://share.example/event.html?type=full&album=a1&photographer=bo#top", EventLink{"bo", "a1", "full"}, true},
		{"photographer=ana&album=a1", EventLink{Photographer: "ana", AlbumID: "a1"}, false},
		{"", EventLink{}, false},
	}
	for _, tc := range cases {
		got, err := ParseEventLink(tc.raw)
		if err != nil {
			t.Fatalf("ParseEventLink(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want || got.Complete() != tc.complete {
			t.Fatalf("ParseEventLink(%q) = %#v (complete %v)", tc.raw, got, got.Complete())
		}
	}

	if _, err := ParseEventLink("photographer=%zz"); err != ErrInvalidEventLink {
		t.Fatalf("expected ErrInvalidEventLink for malformed query, got %v", err)
	}
}

func TestEventLink_String(t *testing.T) {
	t.Parallel()

	link := EventLink{Photographer: "ana maria", AlbumID: "a&b", Type: LinkVIP}
	want := "/event.html?photographer=ana+maria&album=a%26b&type=vip"
	if got := link.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	back, _ := ParseEventLink(link.String())
	if back != link {
		t.Fatalf("expected round trip, got %#v", back)
	}
}
