package mediatypes

import "testing"

func TestIsImage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want bool
	}{
		{"jpg", true},
		{".JPG", true},
		{"jpeg", true},
		{"PNG", true},
		{"gif", true},
		{"bmp", true},
		{".webp", true},
		{"tiff", false},
		{"heic", false},
		{"mp4", false},
		{"", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			if got := IsImage(tt.ext); got != tt.want {
				t.Errorf("IsImage(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

func TestFormatFromExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want Format
	}{
		{"png", FormatPNG},
		{"jpg", FormatJPEG},
		{"JPEG", FormatJPEG},
		{"gif", FormatGIF},
		{".webp", FormatWEBP},
		{"bmp", FormatUnsupported},
		{"svg", FormatUnsupported},
	}

	for _, tt := range tests {
		if got := FormatFromExtension(tt.ext); got != tt.want {
			t.Errorf("FormatFromExtension(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestFormatMimeType(t *testing.T) {
	t.Parallel()

	if got := FormatJPEG.MimeType(); got != "image/jpeg" {
		t.Errorf("FormatJPEG.MimeType() = %q", got)
	}
	if got := FormatUnsupported.MimeType(); got != "application/octet-stream" {
		t.Errorf("FormatUnsupported.MimeType() = %q", got)
	}
	if FormatUnsupported.Supported() {
		t.Error("FormatUnsupported should not be supported")
	}
	if got := FormatWEBP.String(); got != "webp" {
		t.Errorf("FormatWEBP.String() = %q", got)
	}
}

func TestGetMimeType(t *testing.T) {
	t.Parallel()

	if got := GetMimeType(".BMP"); got != "image/bmp" {
		t.Errorf("GetMimeType(.BMP) = %q", got)
	}
	if got := GetMimeType("txt"); got != "application/octet-stream" {
		t.Errorf("GetMimeType(txt) = %q", got)
	}
}
