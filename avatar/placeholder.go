package avatar

// PlaceholderContentType 占位图类型
const PlaceholderContentType = "image/svg+xml"

var placeholderSVG = []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="300" height="300" viewBox="0 0 300 300">` +
	`<rect width="300" height="300" fill="#f5f5f5"/>` +
	`<text x="150" y="156" font-family="sans-serif" font-size="18" fill="#a3a3a3" text-anchor="middle">Error</text>` +
	`</svg>`)

// Placeholder 返回内置占位图，每次返回新副本
func Placeholder() *Blob {
	data := make([]byte, len(placeholderSVG))
	copy(data, placeholderSVG)
	return &Blob{ContentType: PlaceholderContentType, Data: data}
}
