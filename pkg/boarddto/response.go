package boarddto

// ErrorBody is the JSON body written for failed requests.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
	Value   string `json:"value,omitempty"`
}

// ThemeInfo describes one entry of GET /themes.
type ThemeInfo struct {
	Name     string `json:"name"`
	GlyphSet string `json:"glyph_set"`
	Complete bool   `json:"complete"`
	Default  bool   `json:"default,omitempty"`
}

type ThemesResponse struct {
	Themes []ThemeInfo `json:"themes"`
}
