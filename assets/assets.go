package assets

import "embed"

//go:embed livechart.js
var FS embed.FS
