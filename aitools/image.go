package aitools

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// DetectedImage is an image carried inside a tool result as base64 text
type DetectedImage struct {
	Data      string // Base64 data (without data URL prefix)
	MediaType string // MIME type: "image/png", "image/jpeg", etc.
}

var dataURLPattern = regexp.MustCompile(`^data:image/(png|jpeg|jpg|gif|webp);base64,(.+)$`)

// base64 prefixes of the file signatures we recognize without a data URL
var rawSignatures = []struct {
	prefix    string
	mediaType string
}{
	{"iVBORw0KGgo", "image/png"},
	{"/9j/", "image/jpeg"},
	{"R0lGOD", "image/gif"},
	{"UklGR", "image/webp"},
}

// DataURI wraps raw image bytes in a data URI
func DataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DetectImage checks whether s is a base64 image, either as a data URL or as
// bare base64 with a known signature. Returns nil if no image is detected.
func DetectImage(s string) *DetectedImage {
	s = strings.TrimSpace(s)

	if m := dataURLPattern.FindStringSubmatch(s); m != nil {
		mediaType := "image/" + m[1]
		if m[1] == "jpg" {
			mediaType = "image/jpeg"
		}
		return &DetectedImage{Data: m[2], MediaType: mediaType}
	}

	for _, sig := range rawSignatures {
		if strings.HasPrefix(s, sig.prefix) {
			return &DetectedImage{Data: s, MediaType: sig.mediaType}
		}
	}
	return nil
}

// ExtractImage looks for a data URL image in the top level string fields of a
// result's content. Bare base64 is ignored since typed text can look like it.
// Returns the image, the field it came from and the remaining fields.
func ExtractImage(content any) (*DetectedImage, string, map[string]any) {
	fields, ok := content.(map[string]any)
	if !ok {
		return nil, "", nil
	}
	for key, v := range fields {
		s, ok := v.(string)
		if !ok || !strings.HasPrefix(s, "data:image/") {
			continue
		}
		if img := DetectImage(s); img != nil {
			rest := make(map[string]any, len(fields)-1)
			for k, v := range fields {
				if k != key {
					rest[k] = v
				}
			}
			return img, key, rest
		}
	}
	return nil, "", fields
}
