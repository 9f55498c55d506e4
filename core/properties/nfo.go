package properties

import "regexp"

var urlPattern = regexp.MustCompile(`https?://[^\s"'<>\]\[)(]+`)

// ExtractNFO returns the first http(s) URL of an NFO file.
func ExtractNFO(content []byte) (map[string]any, error) {
	url := urlPattern.Find(content)
	if url == nil {
		return map[string]any{}, nil
	}
	return map[string]any{"url": string(url)}, nil
}
