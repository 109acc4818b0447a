package talk

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"
)

// SignatureMode is how the recipient produced the signature.
type SignatureMode string

const (
	SignatureDrawn SignatureMode = "drawn"
	SignatureTyped SignatureMode = "typed"
)

// blankCanvasSentinels are data URLs a signature pad emits when nothing
// was drawn. They must be rejected, not silently stored.
var blankCanvasSentinels = map[string]struct{}{
	"data:,": {},
	"data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==": {},
}

const typedSignatureSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="120"><text x="20" y="75" font-family="'Brush Script MT', cursive" font-size="48">%s</text></svg>`

// NormalizeSignature converts either input mode into the single stored
// image-data representation (a data URL), so downstream consumers never
// distinguish how the signature was captured.
func NormalizeSignature(mode SignatureMode, imageData string, typedName string) (string, error) {
	switch mode {
	case SignatureDrawn:
		data := strings.TrimSpace(imageData)
		if data == "" {
			return "", ErrSignatureRequired
		}
		if _, blank := blankCanvasSentinels[data]; blank {
			return "", ErrSignatureRequired
		}
		if !strings.HasPrefix(data, "data:image/") {
			return "", fmt.Errorf("%w: not image data", ErrSignatureRequired)
		}
		idx := strings.Index(data, ",")
		if idx < 0 || strings.TrimSpace(data[idx+1:]) == "" {
			return "", ErrSignatureRequired
		}
		return data, nil
	case SignatureTyped:
		name := strings.TrimSpace(typedName)
		if name == "" {
			return "", ErrSignatureRequired
		}
		rendered := fmt.Sprintf(typedSignatureSVG, html.EscapeString(name))
		encoded := base64.StdEncoding.EncodeToString([]byte(rendered))
		return "data:image/svg+xml;base64," + encoded, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrSignatureRequired, mode)
	}
}
