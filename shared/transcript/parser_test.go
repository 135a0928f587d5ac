package transcript

import (
	"errors"
	"testing"
)

func TestParseSubtitleTrack(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "Header cue and text",
			payload: "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nHello\nworld\n",
			want:    "Hello world",
		},
		{
			name: "YouTube headers",
			payload: "WEBVTT\nKind: captions\nLanguage: en\n\n" +
				"00:00:00.000 --> 00:00:02.500 align:start position:0%\n  first line  \n\n" +
				"NOTE this is a comment\n\n" +
				"00:00:02.500 --> 00:00:05.000\nsecond line\n",
			want: "first line second line",
		},
		{
			name:    "CRLF line endings",
			payload: "WEBVTT\r\n\r\n00:00:01.000 --> 00:00:02.000\r\nHello\r\nworld\r\n",
			want:    "Hello world",
		},
		{
			name:    "Inline cue markup",
			payload: "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\n<00:00:01.000><c> Hello</c><00:00:01.500><c> there</c>\nTom &amp; Jerry\n",
			want:    "Hello there Tom & Jerry",
		},
		{
			name:    "Only headers",
			payload: "WEBVTT\nKind: captions\n\n00:00:01.000 --> 00:00:02.000\n",
			want:    "",
		},
		{
			name:    "Empty",
			payload: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSubtitleTrack(tt.payload); got != tt.want {
				t.Errorf("ParseSubtitleTrack() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "Two events",
			payload: `{"events":[{"segs":[{"utf8":"Hello "}]},{"segs":[{"utf8":"world"}]}]}`,
			want:    "Hello world",
		},
		{
			name:    "Events without segments and newline segments",
			payload: `{"wireMagic":"pb3","events":[{"tStartMs":0},{"segs":[{"utf8":"one"},{"utf8":"\n"},{"utf8":"two"}]},{"segs":[{"tOffsetMs":10}]}]}`,
			want:    "one two",
		},
		{
			name:    "No events",
			payload: `{}`,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStructured(tt.payload)
			if err != nil {
				t.Fatalf("ParseStructured() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseStructured() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStructuredInvalid(t *testing.T) {
	for _, payload := range []string{`{"events":[`, `{not json}`, `{"events":"nope"}`} {
		_, err := ParseStructured(payload)
		if !errors.Is(err, ErrMalformedCaptions) {
			t.Errorf("ParseStructured(%q) error = %v, want ErrMalformedCaptions", payload, err)
		}
	}
}

func TestParseCaptionsSniffsFormat(t *testing.T) {
	t.Run("JSON payload", func(t *testing.T) {
		got, err := ParseCaptions("  \n" + `{"events":[{"segs":[{"utf8":"json text"}]}]}`)
		if err != nil {
			t.Fatalf("ParseCaptions() error = %v", err)
		}
		if got != "json text" {
			t.Errorf("ParseCaptions() = %q, want %q", got, "json text")
		}
	})

	t.Run("VTT payload", func(t *testing.T) {
		got, err := ParseCaptions("WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nvtt text\n")
		if err != nil {
			t.Fatalf("ParseCaptions() error = %v", err)
		}
		if got != "vtt text" {
			t.Errorf("ParseCaptions() = %q, want %q", got, "vtt text")
		}
	})

	t.Run("Broken JSON", func(t *testing.T) {
		if _, err := ParseCaptions(`{"events": [`); !errors.Is(err, ErrMalformedCaptions) {
			t.Errorf("ParseCaptions() error = %v, want ErrMalformedCaptions", err)
		}
	})
}
